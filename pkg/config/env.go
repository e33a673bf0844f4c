package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration defaults.
const (
	EnvFontSize      = "PHOTOSTAMP_FONT_SIZE"
	EnvColor         = "PHOTOSTAMP_COLOR"
	EnvPosition      = "PHOTOSTAMP_POSITION"
	EnvOutputQuality = "PHOTOSTAMP_OUTPUT_QUALITY"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables that are already set. Missing files are
// not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays PHOTOSTAMP_* variables found through lookup onto cfg.
// The result is not validated; callers validate once all layers are applied.
func ApplyEnv(cfg WatermarkConfig, lookup func(string) (string, bool)) (WatermarkConfig, error) {
	if v, ok := lookup(EnvFontSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return WatermarkConfig{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvFontSize, v)
		}
		cfg.FontSize = n
	}
	if v, ok := lookup(EnvColor); ok && v != "" {
		cfg.Color = v
	}
	if v, ok := lookup(EnvPosition); ok && v != "" {
		cfg.Position = Position(v)
	}
	if v, ok := lookup(EnvOutputQuality); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return WatermarkConfig{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvOutputQuality, v)
		}
		cfg.OutputQuality = n
	}
	return cfg, nil
}
