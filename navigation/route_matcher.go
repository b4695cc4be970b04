package navigation

import (
	"sort"
	"strings"
)

// Wildcard segments. ":name" captures one segment; "*" as the final segment
// captures the remainder, possibly empty, under the "*" key.
const (
	paramPrefix = ":"
	wildcard    = "*"
	separator   = "/"
)

// Match reports whether target matches pattern and returns the captured
// parameters. Leading and trailing separators are ignored on both sides.
func Match(pattern, target string) (map[string]string, bool) {
	patternParts := splitPath(pattern)
	targetParts := splitPath(target)
	params := map[string]string{}

	pLen, tLen := len(patternParts), len(targetParts)
	pi, ti := 0, 0
	for pi < pLen && ti < tLen {
		part := patternParts[pi]
		switch {
		case part == wildcard && pi == pLen-1:
			params[wildcard] = strings.Join(targetParts[ti:], separator)
			return params, true
		case part == wildcard:
		case strings.HasPrefix(part, paramPrefix) && len(part) > 1:
			params[part[1:]] = targetParts[ti]
		case part != targetParts[ti]:
			return nil, false
		}
		pi++
		ti++
	}

	if pi == pLen && ti == tLen {
		return params, true
	}
	// trailing "*" also matches an empty remainder: "docs/*" matches "docs"
	if pi == pLen-1 && ti == tLen && patternParts[pi] == wildcard {
		params[wildcard] = ""
		return params, true
	}
	return nil, false
}

func splitPath(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), separator)
	if p == "" {
		return nil
	}
	return strings.Split(p, separator)
}

// specificity orders patterns so static segments win over parameters, and
// parameters win over wildcards.
func specificity(pattern string) (static, params, wild int) {
	for _, part := range splitPath(pattern) {
		switch {
		case part == wildcard:
			wild++
		case strings.HasPrefix(part, paramPrefix):
			params++
		default:
			static++
		}
	}
	return static, params, wild
}

func sortPatterns(patterns []string) {
	sort.SliceStable(patterns, func(i, j int) bool {
		si, pi, wi := specificity(patterns[i])
		sj, pj, wj := specificity(patterns[j])
		if si != sj {
			return si > sj
		}
		if wi != wj {
			return wi < wj
		}
		if pi != pj {
			return pi < pj
		}
		return patterns[i] < patterns[j]
	})
}
