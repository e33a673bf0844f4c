package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid watermark config")

// Position names the anchor the watermark text is placed against.
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
	Center      Position = "center"
)

// Positions lists every accepted anchor in display order.
var Positions = []Position{TopLeft, TopRight, BottomLeft, BottomRight, Center}

const (
	DefaultFontSize      = 36
	DefaultColor         = "white"
	DefaultPosition      = BottomRight
	DefaultOutputQuality = 95
)

// WatermarkConfig controls how the date text is rendered and how the stamped
// copy is encoded. Values are passed around by value and never mutated after
// validation.
type WatermarkConfig struct {
	FontSize      int      `yaml:"font_size" json:"font_size"`
	Color         string   `yaml:"color" json:"color"`
	Position      Position `yaml:"position" json:"position"`
	OutputQuality int      `yaml:"output_quality" json:"output_quality"`
}

// Default returns the configuration used when nothing else is specified.
func Default() WatermarkConfig {
	return WatermarkConfig{
		FontSize:      DefaultFontSize,
		Color:         DefaultColor,
		Position:      DefaultPosition,
		OutputQuality: DefaultOutputQuality,
	}
}

// New builds a validated configuration. Invalid values are reported, never clamped.
func New(fontSize int, color string, position Position, outputQuality int) (WatermarkConfig, error) {
	cfg := WatermarkConfig{
		FontSize:      fontSize,
		Color:         color,
		Position:      position,
		OutputQuality: outputQuality,
	}
	if err := cfg.Validate(); err != nil {
		return WatermarkConfig{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c WatermarkConfig) Validate() error {
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: font size must be positive, got %d", ErrInvalidConfig, c.FontSize)
	}
	if c.OutputQuality < 1 || c.OutputQuality > 100 {
		return fmt.Errorf("%w: output quality must be between 1 and 100, got %d", ErrInvalidConfig, c.OutputQuality)
	}
	if _, err := ParsePosition(string(c.Position)); err != nil {
		return err
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	return nil
}

// ParsePosition maps a user-supplied string onto one of the known anchors.
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if string(p) == s {
			return p, nil
		}
	}
	names := make([]string, 0, len(Positions))
	for _, p := range Positions {
		names = append(names, string(p))
	}
	return "", fmt.Errorf("%w: position must be one of %s, got %q", ErrInvalidConfig, strings.Join(names, ", "), s)
}
