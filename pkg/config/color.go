package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor accepts an SVG/CSS color name ("white", "red", ...) or a hex
// literal in #rgb, #rrggbb or #rrggbbaa form. Matching is case-insensitive.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.RGBA{}, fmt.Errorf("%w: color must not be empty", ErrInvalidConfig)
	}

	if hex, ok := strings.CutPrefix(name, "#"); ok {
		c, err := parseHex(hex)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidConfig, s, err)
		}
		return c, nil
	}

	c, ok := colornames.Map[name]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: unknown color %q", ErrInvalidConfig, s)
	}
	return c, nil
}

// IsBlack reports whether c has no red, green or blue component.
func IsBlack(c color.RGBA) bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func parseHex(hex string) (color.RGBA, error) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("expected 3, 6 or 8 hex digits, got %d", len(hex))
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("not a hex value")
	}
	// hex digits are straight alpha; color.RGBA is premultiplied
	c := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
