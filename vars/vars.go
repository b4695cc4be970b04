// Package vars resolves ${path} tokens against an execution scope.
//
// A string that is exactly one token is replaced by the resolved value with
// its type intact, so objects and arrays can flow into request bodies. Tokens
// embedded in longer strings are replaced by the value's string form. Missing
// paths resolve to "" and are reported as VARIABLE_RESOLUTION diagnostics.
package vars

import (
	"fmt"
	"regexp"
	"strings"

	uiflow "github.com/goliatone/go-uiflow"
)

var tokenPattern = regexp.MustCompile(`\$\{([^{}]*)\}`)

// HasTokens reports whether v, or anything nested inside it, holds a token.
func HasTokens(v any) bool {
	switch val := v.(type) {
	case string:
		return tokenPattern.MatchString(val)
	case map[string]any:
		for _, item := range val {
			if HasTokens(item) {
				return true
			}
		}
	case []any:
		for _, item := range val {
			if HasTokens(item) {
				return true
			}
		}
	}
	return false
}

// Tokens returns the trimmed paths referenced in s, in order of appearance.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// WholeToken returns the path when s is exactly one token.
func WholeToken(s string) (string, bool) {
	loc := tokenPattern.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return "", false
	}
	return strings.TrimSpace(s[loc[2]:loc[3]]), true
}

// Resolve walks v and substitutes every token. Maps and slices are copied;
// the input is never modified.
func Resolve(v any, scope uiflow.Scope, path string) (any, []uiflow.Diagnostic) {
	switch val := v.(type) {
	case string:
		return resolveString(val, scope, path)
	case map[string]any:
		m, diags := ResolveMap(val, scope, path)
		return m, diags
	case []any:
		out := make([]any, len(val))
		var diags []uiflow.Diagnostic
		for i, item := range val {
			r, d := Resolve(item, scope, uiflow.IndexPath(path, i))
			out[i] = r
			diags = append(diags, d...)
		}
		return out, diags
	default:
		return v, nil
	}
}

// ResolveMap resolves every value of m. A nil map stays nil.
func ResolveMap(m map[string]any, scope uiflow.Scope, path string) (map[string]any, []uiflow.Diagnostic) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]any, len(m))
	var diags []uiflow.Diagnostic
	for key, item := range m {
		r, d := Resolve(item, scope, uiflow.JoinPath(path, key))
		out[key] = r
		diags = append(diags, d...)
	}
	return out, diags
}

// ResolveStrings resolves a string map, used for headers.
func ResolveStrings(m map[string]string, scope uiflow.Scope, path string) (map[string]string, []uiflow.Diagnostic) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	var diags []uiflow.Diagnostic
	for key, item := range m {
		s, d := Interpolate(item, scope, uiflow.JoinPath(path, key))
		out[key] = s
		diags = append(diags, d...)
	}
	return out, diags
}

// Interpolate always returns a string, stringifying whole tokens as well.
func Interpolate(s string, scope uiflow.Scope, path string) (string, []uiflow.Diagnostic) {
	var diags []uiflow.Diagnostic
	out := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-1])
		v, d := lookup(name, scope, path)
		diags = append(diags, d...)
		return uiflow.Stringify(v)
	})
	return out, diags
}

func resolveString(s string, scope uiflow.Scope, path string) (any, []uiflow.Diagnostic) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	if name, ok := WholeToken(s); ok {
		return lookup(name, scope, path)
	}
	return Interpolate(s, scope, path)
}

func lookup(name string, scope uiflow.Scope, path string) (any, []uiflow.Diagnostic) {
	if _, valid := uiflow.SplitPath(name); !valid {
		return "", []uiflow.Diagnostic{missing(name, path, "invalid variable path")}
	}
	if scope != nil {
		if v, ok := scope.Lookup(name); ok {
			return uiflow.DeepCopy(v), nil
		}
	}
	return "", []uiflow.Diagnostic{missing(name, path, "variable not found")}
}

func missing(name, path, reason string) uiflow.Diagnostic {
	err := uiflow.NewError(
		uiflow.ErrVariableResolution,
		fmt.Sprintf("%s: ${%s}", reason, name),
		nil,
		map[string]any{"variable": name},
	)
	return uiflow.DiagnosticFromError(path, uiflow.SeverityWarning, err)
}
