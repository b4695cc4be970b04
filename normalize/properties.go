package normalize

import (
	uiflow "github.com/goliatone/go-uiflow"
)

// Properties is a normalized property bag. Known keys hold canonical types
// (Color, EdgeInsets, Alignment, ...); the rest keep their decoded JSON value.
type Properties map[string]any

func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Properties) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns the string at key or fallback.
func (p Properties) StringOr(key, fallback string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return fallback
}

func (p Properties) Float(key string) (float64, bool) {
	return uiflow.ToFloat(p[key])
}

func (p Properties) Bool(key string) (bool, bool) {
	return uiflow.ToBool(p[key])
}

func (p Properties) Color(key string) (Color, bool) {
	c, ok := p[key].(Color)
	return c, ok
}

func (p Properties) Insets(key string) (EdgeInsets, bool) {
	e, ok := p[key].(EdgeInsets)
	return e, ok
}

func (p Properties) Alignment(key string) (Alignment, bool) {
	a, ok := p[key].(Alignment)
	return a, ok
}

func (p Properties) Dimension(key string) (Dimension, bool) {
	d, ok := p[key].(Dimension)
	return d, ok
}

func (p Properties) TextStyle(key string) (TextStyle, bool) {
	s, ok := p[key].(TextStyle)
	return s, ok
}

func (p Properties) Decoration(key string) (Decoration, bool) {
	d, ok := p[key].(Decoration)
	return d, ok
}

func (p Properties) Map(key string) (map[string]any, bool) {
	return uiflow.AsMap(p[key])
}

func (p Properties) Slice(key string) ([]any, bool) {
	return uiflow.AsSlice(p[key])
}
