package config

// Config is the root configuration structure.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Monitor MonitorConfig `toml:"monitor"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	TokenFile   string `toml:"token_file"`
	// RateLimit caps outgoing API requests per second.
	RateLimit float64 `toml:"rate_limit"`
}

// MonitorConfig holds now-playing polling settings. Durations are in
// milliseconds.
type MonitorConfig struct {
	Interval            int  `toml:"interval"`
	TransferDelay       int  `toml:"transfer_delay"`
	AutoStart           bool `toml:"auto_start"`
	BackgroundDetection bool `toml:"background_detection"`
}

// HistoryConfig holds play history storage settings.
type HistoryConfig struct {
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
	Scope      string `toml:"scope"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
