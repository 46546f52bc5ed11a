// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Position names for the overlay anchor.
const (
	PositionTopRight     = "top-right"
	PositionTopLeft      = "top-left"
	PositionTopCenter    = "top-center"
	PositionBottomRight  = "bottom-right"
	PositionBottomLeft   = "bottom-left"
	PositionBottomCenter = "bottom-center"
	PositionCenter       = "center"
)

// Config is the overlayd configuration, loaded from
// ~/.config/overlayd/config.toml.
type Config struct {
	Display  DisplayConfig `toml:"display"`
	Timeouts TimeoutConfig `toml:"timeouts"`
	Daemon   DaemonConfig  `toml:"daemon"`
}

// DisplayConfig contains surface placement and sizing settings.
type DisplayConfig struct {
	Position string `toml:"position"`  // Anchor, e.g. "top-center"
	OffsetX  int    `toml:"offset_x"`  // Pixels from the anchored vertical edge
	OffsetY  int    `toml:"offset_y"`  // Pixels from the anchored horizontal edge
	Width    int    `toml:"width"`     // Overlay width in pixels
	IconSize int    `toml:"icon_size"` // Icon edge length in pixels
}

// TimeoutConfig contains display duration settings.
type TimeoutConfig struct {
	Default        Duration `toml:"default"`         // Used when a request carries no timeout
	Minimum        Duration `toml:"minimum"`         // Lower bound applied to every request
	A11yMultiplier float64  `toml:"a11y_multiplier"` // Accessibility timeout multiplier, >= 1
}

// DaemonConfig contains daemon behavior settings.
type DaemonConfig struct {
	WakeDisplay bool   `toml:"wake_display"` // Wake the display when showing an overlay
	LogLevel    string `toml:"log_level"`    // debug, info, warn, error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Position: PositionTopCenter,
			OffsetX:  0,
			OffsetY:  48,
			Width:    360,
			IconSize: 48,
		},
		Timeouts: TimeoutConfig{
			Default:        Duration(3 * time.Second),
			Minimum:        Duration(1 * time.Second),
			A11yMultiplier: 1.0,
		},
		Daemon: DaemonConfig{
			WakeDisplay: true,
			LogLevel:    "info",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "overlayd", "config.toml")
}

// Load reads the config file at path, falling back to defaults for a
// missing file and for any field the file leaves out. An empty path
// means the default location.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and clamps soft values.
func (c *Config) Validate() error {
	switch c.Display.Position {
	case PositionTopRight, PositionTopLeft, PositionTopCenter,
		PositionBottomRight, PositionBottomLeft, PositionBottomCenter,
		PositionCenter:
	default:
		return fmt.Errorf("invalid display position %q", c.Display.Position)
	}

	if c.Timeouts.A11yMultiplier < 1 {
		c.Timeouts.A11yMultiplier = 1
	}
	if c.Timeouts.Default < c.Timeouts.Minimum {
		c.Timeouts.Default = c.Timeouts.Minimum
	}

	switch c.Daemon.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Daemon.LogLevel)
	}
	return nil
}
