package normalize

import (
	"strings"

	uiflow "github.com/goliatone/go-uiflow"
)

// Alignment is one of nine compass positions.
type Alignment string

const (
	TopLeft      Alignment = "topLeft"
	TopCenter    Alignment = "topCenter"
	TopRight     Alignment = "topRight"
	CenterLeft   Alignment = "centerLeft"
	Center       Alignment = "center"
	CenterRight  Alignment = "centerRight"
	BottomLeft   Alignment = "bottomLeft"
	BottomCenter Alignment = "bottomCenter"
	BottomRight  Alignment = "bottomRight"
)

var alignments = map[string]Alignment{
	"topleft":      TopLeft,
	"topcenter":    TopCenter,
	"topright":     TopRight,
	"centerleft":   CenterLeft,
	"center":       Center,
	"centerright":  CenterRight,
	"bottomleft":   BottomLeft,
	"bottomcenter": BottomCenter,
	"bottomright":  BottomRight,
}

// ParseAlignment maps camelCase, snake_case or kebab-case tokens onto the
// nine positions. Unknown tokens fall back to TopLeft.
func ParseAlignment(v any, path string) (Alignment, []uiflow.Diagnostic) {
	s, ok := v.(string)
	if !ok {
		return TopLeft, diag(path, "alignment must be a string, got %v", v)
	}
	if a, found := alignments[foldToken(s)]; found {
		return a, nil
	}
	return TopLeft, diag(path, "unknown alignment %q, using topLeft", s)
}

// foldToken lowercases and strips separators so "top_left", "top-left" and
// "TopLeft" compare equal.
func foldToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// MainAxisAlignment distributes children along a flex axis.
type MainAxisAlignment string

const (
	MainStart        MainAxisAlignment = "start"
	MainEnd          MainAxisAlignment = "end"
	MainCenter       MainAxisAlignment = "center"
	MainSpaceBetween MainAxisAlignment = "spaceBetween"
	MainSpaceAround  MainAxisAlignment = "spaceAround"
	MainSpaceEvenly  MainAxisAlignment = "spaceEvenly"
)

var mainAxis = map[string]MainAxisAlignment{
	"start":        MainStart,
	"end":          MainEnd,
	"center":       MainCenter,
	"spacebetween": MainSpaceBetween,
	"spacearound":  MainSpaceAround,
	"spaceevenly":  MainSpaceEvenly,
}

func ParseMainAxisAlignment(v any, path string) (MainAxisAlignment, []uiflow.Diagnostic) {
	s, _ := v.(string)
	if a, ok := mainAxis[foldToken(s)]; ok {
		return a, nil
	}
	return MainStart, diag(path, "unknown mainAxisAlignment %v, using start", v)
}

// CrossAxisAlignment positions children across a flex axis.
type CrossAxisAlignment string

const (
	CrossStart    CrossAxisAlignment = "start"
	CrossEnd      CrossAxisAlignment = "end"
	CrossCenter   CrossAxisAlignment = "center"
	CrossStretch  CrossAxisAlignment = "stretch"
	CrossBaseline CrossAxisAlignment = "baseline"
)

var crossAxis = map[string]CrossAxisAlignment{
	"start":    CrossStart,
	"end":      CrossEnd,
	"center":   CrossCenter,
	"stretch":  CrossStretch,
	"baseline": CrossBaseline,
}

func ParseCrossAxisAlignment(v any, path string) (CrossAxisAlignment, []uiflow.Diagnostic) {
	s, _ := v.(string)
	if a, ok := crossAxis[foldToken(s)]; ok {
		return a, nil
	}
	return CrossCenter, diag(path, "unknown crossAxisAlignment %v, using center", v)
}

// MainAxisSize is either "min" or "max".
type MainAxisSize string

const (
	MainAxisMin MainAxisSize = "min"
	MainAxisMax MainAxisSize = "max"
)

func ParseMainAxisSize(v any, path string) (MainAxisSize, []uiflow.Diagnostic) {
	switch foldToken(asString(v)) {
	case "min":
		return MainAxisMin, nil
	case "max":
		return MainAxisMax, nil
	}
	return MainAxisMax, diag(path, "unknown mainAxisSize %v, using max", v)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
