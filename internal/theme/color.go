package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a parsed RGBA color. The zero value is fully transparent black,
// which doubles as the "nothing to draw" result of failed parses.
type Color struct {
	R, G, B, A uint8
}

// Transparent is the no-op color failed parses degrade to.
var Transparent = Color{}

// IsTransparent reports whether the color draws nothing.
func (c Color) IsTransparent() bool { return c.A == 0 }

// Hex returns the #rrggbb form, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the #rrggbb or #rrggbbaa form depending on alpha.
func (c Color) String() string {
	if c.A != 0xff {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return c.Hex()
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa, rgb(), rgba(), and the
// keyword "transparent". Anything else reports false so callers can fall
// through the token cascade.
func ParseColor(raw string) (Color, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch {
	case s == "":
		return Transparent, false
	case s == "transparent":
		return Transparent, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[len("rgba(") : len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[len("rgb(") : len(s)-1], false)
	default:
		return Transparent, false
	}
}

func parseHex(digits string) (Color, bool) {
	switch len(digits) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = digits[i]
			expanded[2*i+1] = digits[i]
		}
		digits = string(expanded)
	case 6, 8:
	default:
		return Transparent, false
	}

	parsed, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return Transparent, false
	}

	if len(digits) == 8 {
		return Color{
			R: uint8(parsed >> 24),
			G: uint8(parsed >> 16),
			B: uint8(parsed >> 8),
			A: uint8(parsed),
		}, true
	}
	return Color{
		R: uint8(parsed >> 16),
		G: uint8(parsed >> 8),
		B: uint8(parsed),
		A: 0xff,
	}, true
}

func parseRGBFunc(args string, withAlpha bool) (Color, bool) {
	parts := strings.Split(args, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return Transparent, false
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return Transparent, false
		}
		channels[i] = uint8(n)
	}

	alpha := uint8(0xff)
	if withAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Transparent, false
		}
		alpha = uint8(a*255 + 0.5)
	}

	return Color{R: channels[0], G: channels[1], B: channels[2], A: alpha}, true
}
