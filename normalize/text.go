package normalize

import (
	"strconv"
	"strings"

	uiflow "github.com/goliatone/go-uiflow"
)

// FontWeight is a CSS style numeric weight between 100 and 900.
type FontWeight int

const (
	WeightNormal FontWeight = 400
	WeightBold   FontWeight = 700
)

// ParseFontWeight accepts "normal", "bold", "w100".."w900" and 100..900.
func ParseFontWeight(v any, path string) (FontWeight, []uiflow.Diagnostic) {
	if s, ok := v.(string); ok {
		token := foldToken(s)
		switch token {
		case "normal", "regular":
			return WeightNormal, nil
		case "bold":
			return WeightBold, nil
		}
		token = strings.TrimPrefix(token, "w")
		if n, err := strconv.Atoi(token); err == nil && validWeight(n) {
			return FontWeight(n), nil
		}
		return WeightNormal, diag(path, "unknown fontWeight %q, using normal", s)
	}
	if f, ok := uiflow.ToFloat(v); ok && validWeight(int(f)) && f == float64(int(f)) {
		return FontWeight(int(f)), nil
	}
	return WeightNormal, diag(path, "unknown fontWeight %v, using normal", v)
}

func validWeight(n int) bool {
	return n >= 100 && n <= 900 && n%100 == 0
}

// TextAlign controls horizontal text alignment.
type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignRight   TextAlign = "right"
	TextAlignCenter  TextAlign = "center"
	TextAlignJustify TextAlign = "justify"
	TextAlignStart   TextAlign = "start"
	TextAlignEnd     TextAlign = "end"
)

func ParseTextAlign(v any, path string) (TextAlign, []uiflow.Diagnostic) {
	switch a := TextAlign(foldToken(asString(v))); a {
	case TextAlignLeft, TextAlignRight, TextAlignCenter, TextAlignJustify, TextAlignStart, TextAlignEnd:
		return a, nil
	}
	return TextAlignStart, diag(path, "unknown textAlign %v, using start", v)
}

// TextDecoration is a line drawn with text.
type TextDecoration string

const (
	DecorationNone        TextDecoration = "none"
	DecorationUnderline   TextDecoration = "underline"
	DecorationLineThrough TextDecoration = "lineThrough"
	DecorationOverline    TextDecoration = "overline"
)

func ParseTextDecoration(v any, path string) (TextDecoration, []uiflow.Diagnostic) {
	switch foldToken(asString(v)) {
	case "none":
		return DecorationNone, nil
	case "underline":
		return DecorationUnderline, nil
	case "linethrough", "strikethrough":
		return DecorationLineThrough, nil
	case "overline":
		return DecorationOverline, nil
	}
	return DecorationNone, diag(path, "unknown text decoration %v, using none", v)
}

// FontStyle is either normal or italic.
type FontStyle string

const (
	FontStyleNormal FontStyle = "normal"
	FontStyleItalic FontStyle = "italic"
)

// TextStyle is the canonical form of a "style"/"textStyle" property.
type TextStyle struct {
	FontSize      float64        `json:"fontSize,omitempty"`
	FontWeight    FontWeight     `json:"fontWeight,omitempty"`
	FontStyle     FontStyle      `json:"fontStyle,omitempty"`
	FontFamily    string         `json:"fontFamily,omitempty"`
	Color         *Color         `json:"color,omitempty"`
	LetterSpacing float64        `json:"letterSpacing,omitempty"`
	Height        float64        `json:"height,omitempty"`
	Decoration    TextDecoration `json:"decoration,omitempty"`
}

// ParseTextStyle normalizes each known key independently; a bad key degrades
// to its default without discarding the rest of the style.
func ParseTextStyle(v any, path string) (TextStyle, []uiflow.Diagnostic) {
	m, ok := uiflow.AsMap(v)
	if !ok {
		return TextStyle{}, diag(path, "text style must be an object, got %v", v)
	}

	var (
		out   TextStyle
		diags []uiflow.Diagnostic
	)
	for key, raw := range m {
		p := uiflow.JoinPath(path, key)
		switch key {
		case "fontSize":
			if n, ok := uiflow.ToFloat(raw); ok && n > 0 {
				out.FontSize = n
			} else {
				diags = append(diags, diag(p, "fontSize must be a positive number, got %v", raw)...)
			}
		case "fontWeight":
			w, d := ParseFontWeight(raw, p)
			out.FontWeight, diags = w, append(diags, d...)
		case "fontStyle":
			switch foldToken(asString(raw)) {
			case "italic":
				out.FontStyle = FontStyleItalic
			case "normal":
				out.FontStyle = FontStyleNormal
			default:
				out.FontStyle = FontStyleNormal
				diags = append(diags, diag(p, "unknown fontStyle %v, using normal", raw)...)
			}
		case "fontFamily":
			out.FontFamily = asString(raw)
		case "color":
			c, d := ParseColor(raw, p)
			out.Color, diags = &c, append(diags, d...)
		case "letterSpacing":
			if n, ok := uiflow.ToFloat(raw); ok {
				out.LetterSpacing = n
			} else {
				diags = append(diags, diag(p, "letterSpacing must be a number, got %v", raw)...)
			}
		case "height":
			if n, ok := uiflow.ToFloat(raw); ok && n > 0 {
				out.Height = n
			} else {
				diags = append(diags, diag(p, "height must be a positive number, got %v", raw)...)
			}
		case "decoration":
			dec, d := ParseTextDecoration(raw, p)
			out.Decoration, diags = dec, append(diags, d...)
		}
	}
	return out, sortDiagnostics(diags)
}
