// Package normalize converts loosely typed property bags into canonical
// values. Every parser is pure and total: bad input degrades to a documented
// default plus a PROPERTY_PARSE diagnostic.
package normalize

import (
	"fmt"
	"sort"

	uiflow "github.com/goliatone/go-uiflow"
)

// Func normalizes a single property value.
type Func func(v any, path string) (any, []uiflow.Diagnostic)

// Normalizer dispatches property keys to typed parsers. Keys without a parser
// pass through untouched.
type Normalizer struct {
	funcs map[string]Func
}

// New returns a Normalizer loaded with the default key table.
func New() *Normalizer {
	n := &Normalizer{funcs: make(map[string]Func)}
	for key, fn := range defaultTable() {
		n.funcs[key] = fn
	}
	return n
}

// Register binds key to fn, replacing any previous binding.
func (n *Normalizer) Register(key string, fn Func) {
	if key == "" || fn == nil {
		return
	}
	n.funcs[key] = fn
}

// Properties normalizes every entry of raw. The input map is not modified.
func (n *Normalizer) Properties(raw map[string]any, path string) (Properties, []uiflow.Diagnostic) {
	out := make(Properties, len(raw))
	var diags []uiflow.Diagnostic
	for key, value := range raw {
		fn, ok := n.funcs[key]
		if !ok || value == nil {
			out[key] = value
			continue
		}
		v, d := fn(value, uiflow.JoinPath(path, key))
		out[key] = v
		diags = append(diags, d...)
	}
	return out, sortDiagnostics(diags)
}

func defaultTable() map[string]Func {
	color := lift(ParseColor)
	insets := lift(ParseEdgeInsets)
	dimension := lift(ParseDimension)
	shadows := lift(ParseShadows)
	style := lift(ParseTextStyle)
	return map[string]Func{
		"color":              color,
		"backgroundColor":    color,
		"foregroundColor":    color,
		"borderColor":        color,
		"iconColor":          color,
		"activeColor":        color,
		"padding":            insets,
		"margin":             insets,
		"alignment":          lift(ParseAlignment),
		"textAlign":          lift(ParseTextAlign),
		"fontWeight":         lift(ParseFontWeight),
		"style":              style,
		"textStyle":          style,
		"borderRadius":       lift(ParseBorderRadius),
		"border":             lift(ParseBorder),
		"gradient":           lift(ParseGradient),
		"boxShadow":          shadows,
		"shadows":            shadows,
		"decoration":         lift(ParseDecoration),
		"width":              dimension,
		"height":             dimension,
		"minWidth":           dimension,
		"maxWidth":           dimension,
		"minHeight":          dimension,
		"maxHeight":          dimension,
		"mainAxisAlignment":  lift(ParseMainAxisAlignment),
		"crossAxisAlignment": lift(ParseCrossAxisAlignment),
		"mainAxisSize":       lift(ParseMainAxisSize),
	}
}

func lift[T any](fn func(any, string) (T, []uiflow.Diagnostic)) Func {
	return func(v any, path string) (any, []uiflow.Diagnostic) {
		return fn(v, path)
	}
}

func diag(path, format string, args ...any) []uiflow.Diagnostic {
	return []uiflow.Diagnostic{{
		Path:     path,
		Severity: uiflow.SeverityWarning,
		Code:     uiflow.CodePropertyParse,
		Message:  fmt.Sprintf(format, args...),
	}}
}

func sortDiagnostics(diags []uiflow.Diagnostic) []uiflow.Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Path < diags[j].Path
	})
	return diags
}
