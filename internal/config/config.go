package config

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds application configuration loaded from config.yaml.
type Config struct {
	// Editor overrides $EDITOR/$VISUAL for capture and edit sessions.
	Editor string `yaml:"editor"`

	// StateDir overrides the default per-user state directory that holds
	// the database, edit locks, and exports.
	StateDir string `yaml:"state_dir"`

	// LogLevel is one of debug, info, warn, error. Default: warn.
	LogLevel string `yaml:"log_level"`

	Limits LimitsConfig `yaml:"limits"`
	Web    WebConfig    `yaml:"web"`
}

// LimitsConfig bounds result-set sizes for listing and search.
type LimitsConfig struct {
	Recent int `yaml:"recent"`
	Search int `yaml:"search"`
}

// WebConfig holds the read-only web viewer's listen address.
type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Address returns the viewer listen address.
func (c *WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Limits: LimitsConfig{
			Recent: 20,
			Search: 20,
		},
		Web: WebConfig{
			Bind: "127.0.0.1",
			Port: 7906,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	return c.Web.Validate()
}

// Validate validates the limits configuration.
func (c *LimitsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Recent, validation.Required, validation.Min(1), validation.Max(500)),
		validation.Field(&c.Search, validation.Required, validation.Min(1), validation.Max(500)),
	)
}

// Validate validates the web configuration.
func (c *WebConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Bind, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SlogLevel maps LogLevel to its slog equivalent.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
