// Package logging builds the structured loggers shared by verse components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr]. An unknown level falls back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "verse",
	})
	SetLevel(l, level)
	return l
}

// Discard returns a logger that drops everything. Components use it when the
// caller supplies no logger.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// SetLevel parses level and applies it to l.
func SetLevel(l *log.Logger, level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
}

// OpenFile opens (or creates) a log file for appending, creating parent
// directories as needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// With creates a child logger with the given key-value pairs.
func With(l *log.Logger, kv ...any) *log.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(kv...)
}
