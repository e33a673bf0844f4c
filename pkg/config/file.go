package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML watermark configuration. Keys that are absent keep their
// default values; unknown keys are rejected.
func Load(path string) (WatermarkConfig, error) {
	cfg, err := LoadOnto(Default(), path)
	if err != nil {
		return WatermarkConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return WatermarkConfig{}, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOnto decodes the YAML file at path on top of base. Like ApplyEnv it
// does not validate the result.
func LoadOnto(base WatermarkConfig, path string) (WatermarkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WatermarkConfig{}, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	cfg, err := decode(base, data)
	if err != nil {
		return WatermarkConfig{}, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content on top of Default and validates the result.
func Parse(data []byte) (WatermarkConfig, error) {
	cfg, err := decode(Default(), data)
	if err != nil {
		return WatermarkConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return WatermarkConfig{}, err
	}
	return cfg, nil
}

func decode(cfg WatermarkConfig, data []byte) (WatermarkConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return WatermarkConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML with exactly the four configuration keys.
func Marshal(cfg WatermarkConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}

// Save validates cfg and writes it to path as YAML.
func Save(path string, cfg WatermarkConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save configuration to %s: %w", path, err)
	}
	return nil
}
