package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrNothingPlaying   = errors.New("nothing is currently playing")
	ErrPremiumRequired  = errors.New("spotify premium required")
	ErrNoMatchingDevice = errors.New("no matching device")
	ErrRateLimited      = errors.New("rate limited")
	ErrTransient        = errors.New("temporary failure")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Re-exported so callers only need this package.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// VerseError wraps an error with a user-friendly suggestion.
type VerseError struct {
	Err        error
	Suggestion string
}

func (e *VerseError) Error() string {
	return e.Err.Error()
}

func (e *VerseError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &VerseError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Transient marks err as a retryable failure. The result matches both
// ErrTransient and err.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var verseErr *VerseError
	if errors.As(err, &verseErr) && verseErr.Suggestion != "" {
		return verseErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Run 'verse auth login' to connect your Spotify account"
	case errors.Is(err, ErrSessionExpired) || strings.Contains(errStr, "token expired"):
		return "Your Spotify session expired. Run 'verse auth login' to reconnect"
	case errors.Is(err, ErrNothingPlaying):
		return "Start playing a song on Spotify and try again"
	case errors.Is(err, ErrPremiumRequired):
		return "Transferring playback requires Spotify Premium"
	case errors.Is(err, ErrNoMatchingDevice):
		return "Open Spotify on your phone or tablet so it shows up as a device"
	case errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "429"):
		return "Too many requests. Wait a moment and try again"
	case errors.Is(err, ErrInvalidConfig):
		return "Check ~/.verserc or run with --config to point at a valid file"
	case errors.Is(err, ErrTransient) || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused"):
		return "Check your internet connection and try again"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
