package theme

import (
	"strconv"
	"strings"
)

// Stop is one color stop of a gradient; Position is a fraction in [0, 1].
type Stop struct {
	Color    Color
	Position float64
}

// Gradient is a parsed linear-gradient token. Angle is in degrees.
type Gradient struct {
	Angle float64
	Stops []Stop
}

// Border is a parsed "<width>px <style> <color>" token. Failed parses
// degrade to width 0 and a transparent color.
type Border struct {
	Width int
	Style string
	Color Color
}

// ParseGradient accepts "linear-gradient(<angle>deg, <color> <stop>%, ...)".
// The angle segment is optional and defaults to 180. Fewer than two valid
// stops means the token is not a gradient.
func ParseGradient(raw string) (Gradient, bool) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "linear-gradient(") || !strings.HasSuffix(s, ")") {
		return Gradient{}, false
	}

	body := s[len("linear-gradient(") : len(s)-1]
	segments := splitTopLevel(body)
	if len(segments) == 0 {
		return Gradient{}, false
	}

	gradient := Gradient{Angle: 180}
	if angle, ok := parseAngle(segments[0]); ok {
		gradient.Angle = angle
		segments = segments[1:]
	}

	for _, segment := range segments {
		if stop, ok := parseStop(segment); ok {
			gradient.Stops = append(gradient.Stops, stop)
		}
	}
	if len(gradient.Stops) < 2 {
		return Gradient{}, false
	}
	return gradient, true
}

// splitTopLevel splits on commas outside parentheses so rgb() colors
// survive intact.
func splitTopLevel(s string) []string {
	var segments []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				segments = append(segments, s[start:i])
				start = i + 1
			}
		}
	}
	segments = append(segments, s[start:])
	return segments
}

func parseAngle(segment string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(segment))
	if !strings.HasSuffix(s, "deg") {
		return 0, false
	}
	angle, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "deg")), 64)
	if err != nil {
		return 0, false
	}
	return angle, true
}

func parseStop(segment string) (Stop, bool) {
	fields := strings.Fields(strings.TrimSpace(segment))
	if len(fields) < 2 {
		return Stop{}, false
	}

	last := fields[len(fields)-1]
	if !strings.HasSuffix(last, "%") {
		return Stop{}, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(last, "%"), 64)
	if err != nil {
		return Stop{}, false
	}

	color, ok := ParseColor(strings.Join(fields[:len(fields)-1], " "))
	if !ok {
		return Stop{}, false
	}
	return Stop{Color: color, Position: pct / 100}, true
}

// ParseBorder accepts "<width>px <style> <color>". Anything else degrades
// to the zero Border.
func ParseBorder(raw string) (Border, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 3 {
		return Border{}, false
	}

	widthToken := strings.ToLower(fields[0])
	if !strings.HasSuffix(widthToken, "px") {
		return Border{}, false
	}
	width, err := strconv.Atoi(strings.TrimSuffix(widthToken, "px"))
	if err != nil || width < 0 {
		return Border{}, false
	}

	color, ok := ParseColor(strings.Join(fields[2:], " "))
	if !ok {
		return Border{}, false
	}

	return Border{Width: width, Style: strings.ToLower(fields[1]), Color: color}, true
}

// Fill is a resolved surface paint: a gradient when the token parsed as
// one, otherwise a solid color.
type Fill struct {
	Gradient *Gradient
	Solid    Color
}

// IsGradient reports whether the fill carries gradient stops.
func (f Fill) IsGradient() bool { return f.Gradient != nil }

// Lead returns the color a single-color renderer should use: the first
// gradient stop, or the solid color.
func (f Fill) Lead() Color {
	if f.Gradient != nil && len(f.Gradient.Stops) > 0 {
		return f.Gradient.Stops[0].Color
	}
	return f.Solid
}

// ParseFill resolves a paint token: gradient first, then solid color.
func ParseFill(raw string) (Fill, bool) {
	if gradient, ok := ParseGradient(raw); ok {
		return Fill{Gradient: &gradient}, true
	}
	if color, ok := ParseColor(raw); ok {
		return Fill{Solid: color}, true
	}
	return Fill{}, false
}
