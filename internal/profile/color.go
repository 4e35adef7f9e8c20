package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a chum's text color
type Color struct {
	R, G, B uint8
}

// Black is used whenever a color can't be decoded
var Black = Color{}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Cmd returns the color in the legacy r,g,b form
func (c Color) Cmd() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParseHex decodes #rrggbb (the leading # is optional)
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Black, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ParseRGB decodes the legacy r,g,b form
func ParseRGB(s string) (Color, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return Black, fmt.Errorf("invalid rgb color %q", s)
	}
	var rgb [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Black, fmt.Errorf("invalid rgb component %q: %w", p, err)
		}
		rgb[i] = uint8(n)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
