package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	verrors "github.com/tessro/verse/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[spotify]
client_id = "abc123"

[monitor]
interval = 5000
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Spotify.ClientID != "abc123" {
		t.Errorf("ClientID = %q, want %q", cfg.Spotify.ClientID, "abc123")
	}
	if cfg.Monitor.Interval != 5000 {
		t.Errorf("Interval = %d, want 5000", cfg.Monitor.Interval)
	}
	if cfg.Monitor.TransferDelay != 1000 {
		t.Errorf("TransferDelay = %d, want 1000", cfg.Monitor.TransferDelay)
	}
	if !cfg.Monitor.AutoStart {
		t.Error("AutoStart = false, want default true")
	}
	if cfg.History.MaxEntries != 100 {
		t.Errorf("MaxEntries = %d, want 100", cfg.History.MaxEntries)
	}
	if cfg.Spotify.RedirectURI != "http://127.0.0.1:8888/callback" {
		t.Errorf("RedirectURI = %q", cfg.Spotify.RedirectURI)
	}
}

func TestLoadFromKeepsExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
[monitor]
auto_start = false
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Monitor.AutoStart {
		t.Error("AutoStart = true, want false from file")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[spotify]
client_id = "from-file"
`)
	t.Setenv("VERSE_SPOTIFY_CLIENT_ID", "from-env")
	t.Setenv("VERSE_MONITOR_INTERVAL", "3000")
	t.Setenv("VERSE_HISTORY_SCOPE", "alice")
	t.Setenv("VERSE_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Spotify.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want %q", cfg.Spotify.ClientID, "from-env")
	}
	if cfg.Monitor.Interval != 3000 {
		t.Errorf("Interval = %d, want 3000", cfg.Monitor.Interval)
	}
	if cfg.History.Scope != "alice" {
		t.Errorf("Scope = %q, want %q", cfg.History.Scope, "alice")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadFromInvalidFile(t *testing.T) {
	path := writeConfig(t, `this is = = not toml`)
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() expected error for malformed file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad interval", func(c *Config) { c.Monitor.Interval = 100 }, "interval must be at least 250ms"},
		{"negative delay", func(c *Config) { c.Monitor.TransferDelay = -1 }, "transfer_delay"},
		{"bad redirect", func(c *Config) { c.Spotify.RedirectURI = "ftp://x" }, "redirect_uri"},
		{"bad addr", func(c *Config) { c.Server.Addr = "nope" }, "invalid addr"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "invalid theme"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"negative max", func(c *Config) { c.History.MaxEntries = -5 }, "max_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
			if !errors.Is(err, verrors.ErrInvalidConfig) {
				t.Error("Validate() error should match ErrInvalidConfig")
			}
		})
	}
}
