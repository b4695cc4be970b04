package normalize

import (
	"encoding/json"
	"strings"

	uiflow "github.com/goliatone/go-uiflow"
)

// Dimension is a logical size; Expand asks the host to fill available space.
type Dimension struct {
	Value  float64
	Expand bool
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Expand {
		return json.Marshal("infinity")
	}
	return json.Marshal(d.Value)
}

// ParseDimension accepts a non negative number or "infinity".
func ParseDimension(v any, path string) (Dimension, []uiflow.Diagnostic) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "infinity", "double.infinity", "expand", "fill":
			return Dimension{Expand: true}, nil
		}
	}
	if n, ok := uiflow.ToFloat(v); ok && n >= 0 {
		return Dimension{Value: n}, nil
	}
	return Dimension{}, diag(path, "invalid dimension %v", v)
}
