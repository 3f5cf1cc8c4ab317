package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is the single internal color representation: RGBA with components
// in [0, 1]. Alpha participates in watermark opacity only; content paint
// operators ignore it.
type Color struct {
	R, G, B, A float64
}

// IsZero reports whether c is the zero value (treated as "unset").
func (c Color) IsZero() bool { return c == Color{} }

// Named colors accepted in document specifications.
var namedColors = map[string]Color{
	"black":     {0, 0, 0, 1},
	"white":     {1, 1, 1, 1},
	"red":       {1, 0, 0, 1},
	"green":     {0, 0.5, 0, 1},
	"blue":      {0, 0, 1, 1},
	"gray":      {0.5, 0.5, 0.5, 1},
	"grey":      {0.5, 0.5, 0.5, 1},
	"darkgray":  {0.25, 0.25, 0.25, 1},
	"lightgray": {0.83, 0.83, 0.83, 1},
	"orange":    {1, 0.65, 0, 1},
	"purple":    {0.5, 0, 0.5, 1},
	"yellow":    {1, 1, 0, 1},
	"navy":      {0, 0, 0.5, 1},
	"teal":      {0, 0.5, 0.5, 1},
}

// ParseColor normalizes a color specification ("#RRGGBB", "#RRGGBBAA", or
// a named color) into the internal representation.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	c := Color{A: 1}
	if len(hex) == 8 {
		c.A = float64(v&0xFF) / 255
		v >>= 8
	}
	c.B = float64(v&0xFF) / 255
	c.G = float64((v>>8)&0xFF) / 255
	c.R = float64((v>>16)&0xFF) / 255
	return c, nil
}

// MustColor is ParseColor for compile-time constants in scheme tables.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
