// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	UI      UIConfig      `toml:"ui"`
	Mention MentionConfig `toml:"mention"`
	// Debug makes the sync layer panic on engine faults instead of
	// logging and dropping them.
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma syntax highlighting theme used for code
	// blocks. Defaults to "vulcan" if unset.
	SyntaxTheme string `toml:"syntax_theme"`
	// ListMarkers picks how list markers reach the view: "inline" puts
	// marker text into the view buffer, "drawn" keeps the buffer clean
	// and reports marker positions for the host to paint.
	ListMarkers string `toml:"list_markers"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// ListMarkersOrDefault returns the configured marker mode or "drawn" if unset.
func (u UIConfig) ListMarkersOrDefault() string {
	if u.ListMarkers == "" {
		return "drawn"
	}
	return u.ListMarkers
}

// MentionConfig describes the permalink shape mention URLs must match.
type MentionConfig struct {
	// Host is the permalink host, e.g. "matrix.to". Empty accepts any.
	Host string `toml:"host"`
}

// LogLevelOrDefault returns the configured zerolog level name or "warn".
func (c *Config) LogLevelOrDefault() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return c.LogLevel
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. An empty path skips the file and yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	switch c.UI.ListMarkersOrDefault() {
	case "inline", "drawn":
	default:
		errs = append(errs, fmt.Errorf("ui.list_markers=%q must be \"inline\" or \"drawn\"", c.UI.ListMarkers))
	}

	switch c.LogLevelOrDefault() {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level=%q is not a known level", c.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"COMPOSER_DEBUG", func(v string) {
			if v != "" {
				cfg.Debug = v == "1" || v == "true"
			}
		}},
		{"COMPOSER_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.LogLevel = v
			}
		}},
		{"COMPOSER_SYNTAX_THEME", func(v string) {
			if v != "" {
				cfg.UI.SyntaxTheme = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the composer data directory (~/.config/composer).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "composer"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
