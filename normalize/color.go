package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	uiflow "github.com/goliatone/go-uiflow"
)

// Color is a 32 bit ARGB value.
type Color uint32

// Transparent is returned for any value that cannot be parsed.
const Transparent Color = 0x00000000

var namedColors = map[string]Color{
	"transparent": Transparent,
	"black":       0xFF000000,
	"white":       0xFFFFFFFF,
	"red":         0xFFF44336,
	"green":       0xFF4CAF50,
	"blue":        0xFF2196F3,
	"grey":        0xFF9E9E9E,
	"gray":        0xFF9E9E9E,
	"orange":      0xFFFF9800,
	"yellow":      0xFFFFEB3B,
	"purple":      0xFF9C27B0,
}

func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex renders the canonical "#AARRGGBB" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

func (c Color) String() string { return c.Hex() }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// ParseColor accepts "#RRGGBB", "#AARRGGBB", a named color or an ARGB integer.
// Six digit forms get an opaque alpha channel.
func ParseColor(v any, path string) (Color, []uiflow.Diagnostic) {
	switch val := v.(type) {
	case Color:
		return val, nil
	case string:
		return parseColorString(val, path)
	}
	if f, ok := uiflow.ToFloat(v); ok {
		if f < 0 || f > 0xFFFFFFFF || f != float64(uint32(f)) {
			return Transparent, diag(path, "color integer %v out of range", v)
		}
		return Color(uint32(f)), nil
	}
	return Transparent, diag(path, "unsupported color value %v", v)
}

func parseColorString(raw, path string) (Color, []uiflow.Diagnostic) {
	s := strings.TrimSpace(raw)
	if named, ok := namedColors[strings.ToLower(s)]; ok {
		return named, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Transparent, diag(path, "invalid color %q: expected #RRGGBB or #AARRGGBB", raw)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Transparent, diag(path, "invalid color %q: expected 6 or 8 hex digits", raw)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Transparent, diag(path, "invalid color %q: non hex digits", raw)
	}
	if len(hex) == 6 {
		n |= 0xFF000000
	}
	return Color(uint32(n)), nil
}
