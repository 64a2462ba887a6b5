package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8888/callback",
			RateLimit:   5,
		},
		Monitor: MonitorConfig{
			Interval:      2000,
			TransferDelay: 1000,
			AutoStart:     true,
		},
		History: HistoryConfig{
			Path:       defaultHistoryPath(),
			MaxEntries: 100,
			Scope:      "local",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		TUI: TUIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}
	if c.Spotify.RateLimit == 0 {
		c.Spotify.RateLimit = d.Spotify.RateLimit
	}

	// Monitor
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = d.Monitor.Interval
	}
	if c.Monitor.TransferDelay == 0 {
		c.Monitor.TransferDelay = d.Monitor.TransferDelay
	}

	// History
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = d.History.MaxEntries
	}
	if c.History.Scope == "" {
		c.History.Scope = d.History.Scope
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "verse.db"
	}
	return filepath.Join(dir, "verse", "history.db")
}
