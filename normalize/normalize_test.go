package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		name  string
		in    any
		want  Color
		diags int
	}{
		{"rgb gets opaque alpha", "#FF5722", 0xFFFF5722, 0},
		{"argb keeps alpha", "#80FF5722", 0x80FF5722, 0},
		{"lowercase", "#00ff00", 0xFF00FF00, 0},
		{"named", "white", 0xFFFFFFFF, 0},
		{"integer", float64(0xFF112233), 0xFF112233, 0},
		{"wrong length", "#FFF", Transparent, 1},
		{"non hex", "#GGGGGG", Transparent, 1},
		{"missing hash", "FF5722", Transparent, 1},
		{"wrong type", true, Transparent, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, diags := ParseColor(tc.in, "$.properties.color")
			assert.Equal(t, tc.want, got)
			require.Len(t, diags, tc.diags)
			for _, d := range diags {
				assert.Equal(t, uiflow.CodePropertyParse, d.Code)
				assert.Equal(t, "$.properties.color", d.Path)
			}
		})
	}
}

func TestColorChannels(t *testing.T) {
	c := ARGB(0x80, 0x11, 0x22, 0x33)
	assert.Equal(t, uint8(0x80), c.A())
	assert.Equal(t, uint8(0x11), c.R())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, uint8(0x33), c.B())
	assert.Equal(t, "#80112233", c.Hex())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `"#80112233"`, string(data))
}

func TestParseEdgeInsetsPrecedence(t *testing.T) {
	got, diags := ParseEdgeInsets(map[string]any{"all": 8.0, "horizontal": 20.0}, "p")
	assert.Empty(t, diags)
	assert.Equal(t, EdgeInsets{Left: 20, Right: 20, Top: 8, Bottom: 8}, got)

	got, _ = ParseEdgeInsets(map[string]any{"all": 4.0, "vertical": 10.0, "left": 1.0}, "p")
	assert.Equal(t, EdgeInsets{Left: 1, Right: 4, Top: 10, Bottom: 10}, got)

	got, _ = ParseEdgeInsets(map[string]any{"top": 3.0}, "p")
	assert.Equal(t, EdgeInsets{Top: 3}, got)

	got, _ = ParseEdgeInsets(12, "p")
	assert.Equal(t, Uniform(12), got)
}

func TestParseEdgeInsetsBadValues(t *testing.T) {
	got, diags := ParseEdgeInsets(map[string]any{"all": "wide", "left": 2.0}, "$.padding")
	assert.Equal(t, EdgeInsets{Left: 2}, got)
	require.Len(t, diags, 1)
	assert.Equal(t, "$.padding.all", diags[0].Path)

	got, diags = ParseEdgeInsets([]any{1, 2}, "$.padding")
	assert.True(t, got.IsZero())
	assert.Len(t, diags, 1)
}

func TestParseAlignment(t *testing.T) {
	for in, want := range map[string]Alignment{
		"center":       Center,
		"topLeft":      TopLeft,
		"centerRight":  CenterRight,
		"bottom_right": BottomRight,
		"top-center":   TopCenter,
	} {
		got, diags := ParseAlignment(in, "a")
		assert.Equal(t, want, got, in)
		assert.Empty(t, diags, in)
	}

	got, diags := ParseAlignment("middle", "a")
	assert.Equal(t, TopLeft, got)
	assert.Len(t, diags, 1)
}

func TestParseFontWeight(t *testing.T) {
	w, d := ParseFontWeight("bold", "w")
	assert.Equal(t, WeightBold, w)
	assert.Empty(t, d)

	w, _ = ParseFontWeight("w300", "w")
	assert.Equal(t, FontWeight(300), w)

	w, _ = ParseFontWeight(600.0, "w")
	assert.Equal(t, FontWeight(600), w)

	w, d = ParseFontWeight("heavy", "w")
	assert.Equal(t, WeightNormal, w)
	assert.Len(t, d, 1)
}

func TestParseTextStyleDegradesPerKey(t *testing.T) {
	style, diags := ParseTextStyle(map[string]any{
		"fontSize":   16.0,
		"fontWeight": "bold",
		"color":      "#nothex",
		"decoration": "underline",
	}, "$.style")

	assert.Equal(t, 16.0, style.FontSize)
	assert.Equal(t, WeightBold, style.FontWeight)
	assert.Equal(t, DecorationUnderline, style.Decoration)
	require.NotNil(t, style.Color)
	assert.Equal(t, Transparent, *style.Color)
	require.Len(t, diags, 1)
	assert.Equal(t, "$.style.color", diags[0].Path)
}

func TestParseBorderRadius(t *testing.T) {
	r, _ := ParseBorderRadius(8, "r")
	assert.Equal(t, CircularRadius(8), r)

	r, _ = ParseBorderRadius(map[string]any{"all": 4.0, "topLeft": 12.0}, "r")
	assert.Equal(t, BorderRadius{TopLeft: 12, TopRight: 4, BottomLeft: 4, BottomRight: 4}, r)
}

func TestParseGradient(t *testing.T) {
	g, diags := ParseGradient(map[string]any{
		"colors": []any{"#FF0000", "#0000FF"},
		"stops":  []any{0.0, 1.0},
		"begin":  "topCenter",
	}, "g")
	require.NotNil(t, g)
	assert.Empty(t, diags)
	assert.Equal(t, GradientLinear, g.Type)
	assert.Equal(t, []Color{0xFFFF0000, 0xFF0000FF}, g.Colors)
	assert.Equal(t, TopCenter, g.Begin)
	assert.Equal(t, CenterRight, g.End)

	g, diags = ParseGradient(map[string]any{"colors": []any{"#FF0000"}}, "g")
	assert.Nil(t, g)
	assert.NotEmpty(t, diags)

	g, diags = ParseGradient(map[string]any{
		"type":   "radial",
		"colors": []any{"#FF0000", "#00FF00", "#0000FF"},
		"stops":  []any{0.0, 1.0},
	}, "g")
	require.NotNil(t, g)
	assert.Nil(t, g.Stops)
	assert.Equal(t, Center, g.Center)
	assert.Len(t, diags, 1)
}

func TestParseShadows(t *testing.T) {
	shadows, diags := ParseShadows([]any{
		map[string]any{"offset": map[string]any{"x": 2.0, "y": 4.0}, "blurRadius": 6.0},
		"not-a-shadow",
	}, "s")
	require.Len(t, shadows, 1)
	assert.Equal(t, DefaultShadowColor, shadows[0].Color)
	assert.Equal(t, Offset{X: 2, Y: 4}, shadows[0].Offset)
	assert.Equal(t, 6.0, shadows[0].BlurRadius)
	assert.Len(t, diags, 1)
}

func TestParseDecoration(t *testing.T) {
	dec, diags := ParseDecoration(map[string]any{
		"color":        "#FFFFFF",
		"borderRadius": 12.0,
		"shape":        "circle",
		"border":       map[string]any{"width": 2.0, "color": "#000000"},
	}, "d")
	assert.Empty(t, diags)
	require.NotNil(t, dec.Color)
	assert.Equal(t, Color(0xFFFFFFFF), *dec.Color)
	assert.Equal(t, ShapeCircle, dec.Shape)
	require.NotNil(t, dec.Border)
	assert.Equal(t, 2.0, dec.Border.Width)
}

func TestParseDimension(t *testing.T) {
	d, _ := ParseDimension("infinity", "w")
	assert.True(t, d.Expand)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"infinity"`, string(data))

	d, diags := ParseDimension(-1, "w")
	assert.Equal(t, Dimension{}, d)
	assert.Len(t, diags, 1)
}

func TestNormalizerProperties(t *testing.T) {
	n := New()
	raw := map[string]any{
		"backgroundColor": "#FF5722",
		"padding":         map[string]any{"all": 8.0},
		"alignment":       "nowhere",
		"label":           "untouched",
	}
	props, diags := n.Properties(raw, "$.properties")

	c, ok := props.Color("backgroundColor")
	require.True(t, ok)
	assert.Equal(t, Color(0xFFFF5722), c)

	insets, ok := props.Insets("padding")
	require.True(t, ok)
	assert.Equal(t, Uniform(8), insets)

	align, ok := props.Alignment("alignment")
	require.True(t, ok)
	assert.Equal(t, TopLeft, align)

	assert.Equal(t, "untouched", props.StringOr("label", ""))
	require.Len(t, diags, 1)
	assert.Equal(t, "$.properties.alignment", diags[0].Path)

	assert.Equal(t, "#FF5722", raw["backgroundColor"])
}

func TestNormalizerRegisterOverrides(t *testing.T) {
	n := New()
	n.Register("elevation", func(v any, path string) (any, []uiflow.Diagnostic) {
		f, _ := uiflow.ToFloat(v)
		return f * 2, nil
	})
	props, _ := n.Properties(map[string]any{"elevation": 2.0}, "")
	assert.Equal(t, 4.0, props["elevation"])
}
