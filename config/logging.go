package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig defines the level and output format of application logs.
type LoggingConfig struct {
	// Level is a zerolog level name such as debug or info.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// Apply exports the settings through LOG_LEVEL and APP_ENV, which loggers
// created afterwards read. Variables already set in the environment win.
func (c LoggingConfig) Apply() {
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", strings.ToLower(c.Level))
	}
	if os.Getenv("APP_ENV") == "" && c.Format == "console" {
		_ = os.Setenv("APP_ENV", "dev")
	}
}
