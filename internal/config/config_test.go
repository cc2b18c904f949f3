package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("empty path should yield defaults: %v", err)
	}
	if got := cfg.UI.SyntaxThemeOrDefault(); got != "vulcan" {
		t.Errorf("syntax theme = %q, want vulcan", got)
	}
	if got := cfg.UI.ListMarkersOrDefault(); got != "drawn" {
		t.Errorf("list markers = %q, want drawn", got)
	}
	if got := cfg.LogLevelOrDefault(); got != "warn" {
		t.Errorf("log level = %q, want warn", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
debug = true
log_level = "debug"

[ui]
syntax_theme = "monokai"
list_markers = "inline"

[mention]
host = "matrix.to"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug not read")
	}
	if cfg.UI.SyntaxTheme != "monokai" || cfg.UI.ListMarkers != "inline" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Mention.Host != "matrix.to" {
		t.Errorf("mention host = %q", cfg.Mention.Host)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
log_level = "loud"

[ui]
list_markers = "floating"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("want validation error")
	}
	for _, frag := range []string{"list_markers", "log_level"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error %q does not mention %s", err, frag)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("want error for missing explicit path")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COMPOSER_DEBUG", "true")
	t.Setenv("COMPOSER_LOG_LEVEL", "info")
	t.Setenv("COMPOSER_SYNTAX_THEME", "dracula")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || cfg.LogLevel != "info" || cfg.UI.SyntaxTheme != "dracula" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
