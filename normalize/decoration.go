package normalize

import (
	uiflow "github.com/goliatone/go-uiflow"
)

// BorderRadius holds a circular radius per corner.
type BorderRadius struct {
	TopLeft     float64 `json:"topLeft"`
	TopRight    float64 `json:"topRight"`
	BottomLeft  float64 `json:"bottomLeft"`
	BottomRight float64 `json:"bottomRight"`
}

func CircularRadius(r float64) BorderRadius {
	return BorderRadius{TopLeft: r, TopRight: r, BottomLeft: r, BottomRight: r}
}

// ParseBorderRadius accepts a number or {all, topLeft, topRight, bottomLeft,
// bottomRight}; corner keys override all.
func ParseBorderRadius(v any, path string) (BorderRadius, []uiflow.Diagnostic) {
	if n, ok := uiflow.ToFloat(v); ok {
		return CircularRadius(n), nil
	}
	m, ok := uiflow.AsMap(v)
	if !ok {
		return BorderRadius{}, diag(path, "unsupported borderRadius value %v", v)
	}
	var (
		out   BorderRadius
		diags []uiflow.Diagnostic
	)
	num := func(key string) (float64, bool) {
		raw, present := m[key]
		if !present {
			return 0, false
		}
		n, ok := uiflow.ToFloat(raw)
		if !ok {
			diags = append(diags, diag(uiflow.JoinPath(path, key), "radius %q must be a number, got %v", key, raw)...)
		}
		return n, ok
	}
	if n, ok := num("all"); ok {
		out = CircularRadius(n)
	}
	if n, ok := num("topLeft"); ok {
		out.TopLeft = n
	}
	if n, ok := num("topRight"); ok {
		out.TopRight = n
	}
	if n, ok := num("bottomLeft"); ok {
		out.BottomLeft = n
	}
	if n, ok := num("bottomRight"); ok {
		out.BottomRight = n
	}
	return out, diags
}

// BorderStyle is solid or none.
type BorderStyle string

const (
	BorderSolid BorderStyle = "solid"
	BorderNone  BorderStyle = "none"
)

// Border is a uniform border around a box.
type Border struct {
	Color Color       `json:"color"`
	Width float64     `json:"width"`
	Style BorderStyle `json:"style"`
}

// ParseBorder defaults to a 1px solid black border.
func ParseBorder(v any, path string) (Border, []uiflow.Diagnostic) {
	out := Border{Color: 0xFF000000, Width: 1, Style: BorderSolid}
	m, ok := uiflow.AsMap(v)
	if !ok {
		return out, diag(path, "border must be an object, got %v", v)
	}
	var diags []uiflow.Diagnostic
	if raw, ok := m["color"]; ok {
		c, d := ParseColor(raw, uiflow.JoinPath(path, "color"))
		out.Color, diags = c, append(diags, d...)
	}
	if raw, ok := m["width"]; ok {
		if n, ok := uiflow.ToFloat(raw); ok && n >= 0 {
			out.Width = n
		} else {
			diags = append(diags, diag(uiflow.JoinPath(path, "width"), "border width must be a non negative number, got %v", raw)...)
		}
	}
	if raw, ok := m["style"]; ok {
		switch foldToken(asString(raw)) {
		case "solid":
			out.Style = BorderSolid
		case "none":
			out.Style = BorderNone
		default:
			diags = append(diags, diag(uiflow.JoinPath(path, "style"), "unknown border style %v, using solid", raw)...)
		}
	}
	return out, diags
}

// GradientType is linear or radial.
type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

// Gradient is a linear or radial color gradient.
type Gradient struct {
	Type   GradientType `json:"type"`
	Colors []Color      `json:"colors"`
	Stops  []float64    `json:"stops,omitempty"`
	Begin  Alignment    `json:"begin,omitempty"`
	End    Alignment    `json:"end,omitempty"`
	Center Alignment    `json:"center,omitempty"`
	Radius float64      `json:"radius,omitempty"`
}

// ParseGradient returns nil when fewer than two colors survive parsing.
// Mismatched stops are dropped rather than failing the gradient.
func ParseGradient(v any, path string) (*Gradient, []uiflow.Diagnostic) {
	m, ok := uiflow.AsMap(v)
	if !ok {
		return nil, diag(path, "gradient must be an object, got %v", v)
	}
	var diags []uiflow.Diagnostic

	g := &Gradient{Type: GradientLinear}
	if raw, ok := m["type"]; ok {
		switch foldToken(asString(raw)) {
		case "linear":
		case "radial":
			g.Type = GradientRadial
		default:
			diags = append(diags, diag(uiflow.JoinPath(path, "type"), "unknown gradient type %v, using linear", raw)...)
		}
	}

	colors, _ := uiflow.AsSlice(m["colors"])
	for i, raw := range colors {
		c, d := ParseColor(raw, uiflow.IndexPath(uiflow.JoinPath(path, "colors"), i))
		if len(d) > 0 {
			diags = append(diags, d...)
			continue
		}
		g.Colors = append(g.Colors, c)
	}
	if len(g.Colors) < 2 {
		return nil, append(diags, diag(uiflow.JoinPath(path, "colors"), "gradient needs at least two valid colors")...)
	}

	if rawStops, present := m["stops"]; present {
		stops, _ := uiflow.AsSlice(rawStops)
		parsed := make([]float64, 0, len(stops))
		valid := len(stops) == len(g.Colors)
		for _, raw := range stops {
			n, ok := uiflow.ToFloat(raw)
			if !ok || n < 0 || n > 1 {
				valid = false
				break
			}
			parsed = append(parsed, n)
		}
		if valid {
			g.Stops = parsed
		} else {
			diags = append(diags, diag(uiflow.JoinPath(path, "stops"), "stops must be %d numbers in [0,1], ignoring", len(g.Colors))...)
		}
	}

	alignment := func(key string, fallback Alignment) Alignment {
		raw, present := m[key]
		if !present {
			return fallback
		}
		a, d := ParseAlignment(raw, uiflow.JoinPath(path, key))
		diags = append(diags, d...)
		return a
	}
	switch g.Type {
	case GradientLinear:
		g.Begin = alignment("begin", CenterLeft)
		g.End = alignment("end", CenterRight)
	case GradientRadial:
		g.Center = alignment("center", Center)
		g.Radius = 0.5
		if raw, ok := m["radius"]; ok {
			if n, ok := uiflow.ToFloat(raw); ok && n > 0 {
				g.Radius = n
			} else {
				diags = append(diags, diag(uiflow.JoinPath(path, "radius"), "radius must be a positive number, using 0.5")...)
			}
		}
	}
	return g, diags
}

// Offset is a 2D displacement.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoxShadow is a single drop shadow.
type BoxShadow struct {
	Color        Color   `json:"color"`
	Offset       Offset  `json:"offset"`
	BlurRadius   float64 `json:"blurRadius"`
	SpreadRadius float64 `json:"spreadRadius"`
}

// DefaultShadowColor is used when a shadow omits its color.
const DefaultShadowColor Color = 0x40000000

// ParseShadows accepts one shadow object or a list of them. Entries that are
// not objects are skipped.
func ParseShadows(v any, path string) ([]BoxShadow, []uiflow.Diagnostic) {
	if m, ok := uiflow.AsMap(v); ok {
		s, d := parseShadow(m, path)
		return []BoxShadow{s}, d
	}
	items, ok := uiflow.AsSlice(v)
	if !ok {
		return nil, diag(path, "shadow must be an object or a list, got %v", v)
	}
	var (
		out   []BoxShadow
		diags []uiflow.Diagnostic
	)
	for i, raw := range items {
		p := uiflow.IndexPath(path, i)
		m, ok := uiflow.AsMap(raw)
		if !ok {
			diags = append(diags, diag(p, "shadow entry must be an object, got %v", raw)...)
			continue
		}
		s, d := parseShadow(m, p)
		out = append(out, s)
		diags = append(diags, d...)
	}
	return out, diags
}

func parseShadow(m map[string]any, path string) (BoxShadow, []uiflow.Diagnostic) {
	var diags []uiflow.Diagnostic
	s := BoxShadow{Color: DefaultShadowColor}
	if raw, ok := m["color"]; ok {
		c, d := ParseColor(raw, uiflow.JoinPath(path, "color"))
		diags = append(diags, d...)
		if len(d) == 0 {
			s.Color = c
		}
	}
	num := func(raw any, key string) float64 {
		n, ok := uiflow.ToFloat(raw)
		if !ok {
			diags = append(diags, diag(uiflow.JoinPath(path, key), "%s must be a number, got %v", key, raw)...)
		}
		return n
	}
	if raw, ok := m["offset"]; ok {
		if om, ok := uiflow.AsMap(raw); ok {
			if x, ok := om["x"]; ok {
				s.Offset.X = num(x, "offset.x")
			}
			if y, ok := om["y"]; ok {
				s.Offset.Y = num(y, "offset.y")
			}
		} else {
			diags = append(diags, diag(uiflow.JoinPath(path, "offset"), "offset must be an object with x and y")...)
		}
	}
	if raw, ok := m["offsetX"]; ok {
		s.Offset.X = num(raw, "offsetX")
	}
	if raw, ok := m["offsetY"]; ok {
		s.Offset.Y = num(raw, "offsetY")
	}
	if raw, ok := m["blurRadius"]; ok {
		s.BlurRadius = num(raw, "blurRadius")
	}
	if raw, ok := m["spreadRadius"]; ok {
		s.SpreadRadius = num(raw, "spreadRadius")
	}
	return s, diags
}

// BoxShape is rectangle or circle.
type BoxShape string

const (
	ShapeRectangle BoxShape = "rectangle"
	ShapeCircle    BoxShape = "circle"
)

// Decoration paints the background of a box.
type Decoration struct {
	Color        *Color        `json:"color,omitempty"`
	Border       *Border       `json:"border,omitempty"`
	BorderRadius *BorderRadius `json:"borderRadius,omitempty"`
	Gradient     *Gradient     `json:"gradient,omitempty"`
	Shadows      []BoxShadow   `json:"boxShadow,omitempty"`
	Shape        BoxShape      `json:"shape"`
}

func ParseDecoration(v any, path string) (Decoration, []uiflow.Diagnostic) {
	out := Decoration{Shape: ShapeRectangle}
	m, ok := uiflow.AsMap(v)
	if !ok {
		return out, diag(path, "decoration must be an object, got %v", v)
	}
	var diags []uiflow.Diagnostic
	for key, raw := range m {
		p := uiflow.JoinPath(path, key)
		switch key {
		case "color":
			c, d := ParseColor(raw, p)
			out.Color, diags = &c, append(diags, d...)
		case "border":
			b, d := ParseBorder(raw, p)
			out.Border, diags = &b, append(diags, d...)
		case "borderRadius":
			r, d := ParseBorderRadius(raw, p)
			out.BorderRadius, diags = &r, append(diags, d...)
		case "gradient":
			g, d := ParseGradient(raw, p)
			out.Gradient, diags = g, append(diags, d...)
		case "boxShadow", "shadows":
			s, d := ParseShadows(raw, p)
			out.Shadows, diags = append(out.Shadows, s...), append(diags, d...)
		case "shape":
			switch foldToken(asString(raw)) {
			case "rectangle":
			case "circle":
				out.Shape = ShapeCircle
			default:
				diags = append(diags, diag(p, "unknown shape %v, using rectangle", raw)...)
			}
		}
	}
	return out, sortDiagnostics(diags)
}
