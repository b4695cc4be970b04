package normalize

import (
	uiflow "github.com/goliatone/go-uiflow"
)

// EdgeInsets is a four sided box used for padding and margin.
type EdgeInsets struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func Uniform(n float64) EdgeInsets {
	return EdgeInsets{Left: n, Top: n, Right: n, Bottom: n}
}

func (e EdgeInsets) IsZero() bool {
	return e == EdgeInsets{}
}

// ParseEdgeInsets accepts a bare number or an object mixing three shapes:
// {all}, {horizontal, vertical} and {left, top, right, bottom}. Per side,
// explicit keys win over horizontal/vertical, which win over all. Omitted
// sides are 0.
func ParseEdgeInsets(v any, path string) (EdgeInsets, []uiflow.Diagnostic) {
	if n, ok := uiflow.ToFloat(v); ok {
		return Uniform(n), nil
	}
	m, ok := uiflow.AsMap(v)
	if !ok {
		return EdgeInsets{}, diag(path, "unsupported spacing value %v", v)
	}

	var diags []uiflow.Diagnostic
	num := func(key string) (float64, bool) {
		raw, present := m[key]
		if !present || raw == nil {
			return 0, false
		}
		n, ok := uiflow.ToFloat(raw)
		if !ok {
			diags = append(diags, diag(uiflow.JoinPath(path, key), "spacing %q must be a number, got %v", key, raw)...)
			return 0, false
		}
		return n, true
	}

	var out EdgeInsets
	if all, ok := num("all"); ok {
		out = Uniform(all)
	}
	if h, ok := num("horizontal"); ok {
		out.Left, out.Right = h, h
	}
	if vert, ok := num("vertical"); ok {
		out.Top, out.Bottom = vert, vert
	}
	if n, ok := num("left"); ok {
		out.Left = n
	}
	if n, ok := num("top"); ok {
		out.Top = n
	}
	if n, ok := num("right"); ok {
		out.Right = n
	}
	if n, ok := num("bottom"); ok {
		out.Bottom = n
	}
	return out, diags
}
