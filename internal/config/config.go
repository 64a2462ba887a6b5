package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.verserc, $XDG_CONFIG_HOME/verse/config.toml, ~/.config/verse/config.toml
func Load() (*Config, error) {
	// Decoding over the defaults keeps booleans that default to true
	// unless the file sets them.
	cfg := Default()

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Defaults first, then environment overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".verserc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "verse", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := os.Getenv("VERSE_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("VERSE_SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.Spotify.RedirectURI = v
	}
	if v := os.Getenv("VERSE_SPOTIFY_TOKEN_FILE"); v != "" {
		cfg.Spotify.TokenFile = v
	}

	// Monitor
	if v := os.Getenv("VERSE_MONITOR_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.Interval = i
		}
	}
	if v := os.Getenv("VERSE_MONITOR_AUTO_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Monitor.AutoStart = b
		}
	}

	// History
	if v := os.Getenv("VERSE_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("VERSE_HISTORY_SCOPE"); v != "" {
		cfg.History.Scope = v
	}

	// Server
	if v := os.Getenv("VERSE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	// Log
	if v := os.Getenv("VERSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VERSE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
