// Package config loads and saves the bot configuration as JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
)

const (
	appDir     = "symbol-spotter"
	configFile = "config.json"
)

// Config holds every tunable of the bot.
type Config struct {
	ModelPath  string   `json:"model_path"`
	ClassNames []string `json:"class_names,omitempty"`
	InputSize  int      `json:"input_size"`
	Display    int      `json:"display"`
	Confidence float64  `json:"confidence"`

	SimilarityThreshold float64 `json:"similarity_threshold"`
	ChangeThreshold     float64 `json:"change_threshold"`

	TickDelayMS    int `json:"tick_delay_ms"`
	ErrorBackoffMS int `json:"error_backoff_ms"`
	HighlightMS    int `json:"highlight_ms"`

	Debug    bool   `json:"debug"`
	DebugDir string `json:"debug_dir,omitempty"`

	BinaryThreshold float64 `json:"binary_threshold"`
	MinArea         float64 `json:"min_area"`
	MaxArea         float64 `json:"max_area"`

	path string
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ModelPath:  "models/best.onnx",
		InputSize:  640,
		Confidence: 0.8,

		SimilarityThreshold: 1.0,
		ChangeThreshold:     10.0,

		TickDelayMS:    30,
		ErrorBackoffMS: 500,
		HighlightMS:    500,

		BinaryThreshold: 150,
		MinArea:         50,
		MaxArea:         5000,
	}
}

// DefaultPath returns ~/.config/symbol-spotter/config.json (or the platform equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load reads the config at path, or DefaultPath when path is empty.
// A missing file yields defaults; fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) { c.path = path }

// Save writes the config as indented JSON.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Validate rejects values the bot cannot run with.
func (c *Config) Validate() error {
	var err error
	if c.Confidence <= 0 || c.Confidence > 1 {
		err = multierr.Append(err, fmt.Errorf("confidence %.2f outside (0, 1]", c.Confidence))
	}
	if c.SimilarityThreshold <= 0 {
		err = multierr.Append(err, errors.New("similarity_threshold must be positive"))
	}
	if c.ChangeThreshold <= 0 {
		err = multierr.Append(err, errors.New("change_threshold must be positive"))
	}
	if c.TickDelayMS <= 0 || c.ErrorBackoffMS <= 0 || c.HighlightMS <= 0 {
		err = multierr.Append(err, errors.New("delays must be positive"))
	}
	if c.InputSize <= 0 {
		err = multierr.Append(err, errors.New("input_size must be positive"))
	}
	if c.MinArea < 0 || c.MaxArea <= c.MinArea {
		err = multierr.Append(err, fmt.Errorf("area range (%.0f, %.0f) is empty", c.MinArea, c.MaxArea))
	}
	if c.Display < 0 {
		err = multierr.Append(err, errors.New("display index must not be negative"))
	}
	return err
}

// TickDelay is the pause between successful ticks.
func (c *Config) TickDelay() time.Duration { return time.Duration(c.TickDelayMS) * time.Millisecond }

// ErrorBackoff is the pause after a failed tick.
func (c *Config) ErrorBackoff() time.Duration {
	return time.Duration(c.ErrorBackoffMS) * time.Millisecond
}

// HighlightDuration is how long a highlight stays up.
func (c *Config) HighlightDuration() time.Duration {
	return time.Duration(c.HighlightMS) * time.Millisecond
}
