package wizard

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tessro/verse/internal/config"
)

// SetupAnswers holds what the first-run setup asks for.
type SetupAnswers struct {
	ClientID    string
	RedirectURI string
	Interval    string
	AutoStart   bool
	Record      bool
}

// NewSetupAnswers seeds the answers from cfg.
func NewSetupAnswers(cfg *config.Config) *SetupAnswers {
	return &SetupAnswers{
		ClientID:    cfg.Spotify.ClientID,
		RedirectURI: cfg.Spotify.RedirectURI,
		Interval:    strconv.Itoa(cfg.Monitor.Interval),
		AutoStart:   cfg.Monitor.AutoStart,
		Record:      cfg.Monitor.BackgroundDetection,
	}
}

// SetupForm builds the first-run form writing into a.
func SetupForm(a *SetupAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spotify client ID").
				Description("Create an app at developer.spotify.com and paste its client ID.").
				Value(&a.ClientID).
				Validate(ValidateClientID),
			huh.NewInput().
				Title("Redirect URI").
				Description("Must match a redirect URI registered for the app.").
				Value(&a.RedirectURI).
				Validate(ValidateRedirectURI),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How often should verse check what is playing?").
				Options(
					huh.NewOption("Every second", "1000"),
					huh.NewOption("Every 2 seconds", "2000"),
					huh.NewOption("Every 5 seconds", "5000"),
					huh.NewOption("Every 10 seconds", "10000"),
				).
				Value(&a.Interval),
			huh.NewConfirm().
				Title("Keep polling after a track is detected?").
				Value(&a.AutoStart),
			huh.NewConfirm().
				Title("Record tracks noticed while polling in history?").
				Value(&a.Record),
		),
	)
}

// Apply copies the answers into cfg.
func (a *SetupAnswers) Apply(cfg *config.Config) error {
	if err := ValidateClientID(a.ClientID); err != nil {
		return err
	}
	if err := ValidateRedirectURI(a.RedirectURI); err != nil {
		return err
	}
	interval, err := strconv.Atoi(a.Interval)
	if err != nil || interval <= 0 {
		return fmt.Errorf("invalid interval %q", a.Interval)
	}

	cfg.Spotify.ClientID = strings.TrimSpace(a.ClientID)
	cfg.Spotify.RedirectURI = strings.TrimSpace(a.RedirectURI)
	cfg.Monitor.Interval = interval
	cfg.Monitor.AutoStart = a.AutoStart
	cfg.Monitor.BackgroundDetection = a.Record
	return nil
}

// RunSetup asks for the basic settings and applies them to cfg.
func RunSetup(cfg *config.Config) error {
	a := NewSetupAnswers(cfg)
	if err := SetupForm(a).Run(); err != nil {
		return err
	}
	return a.Apply(cfg)
}

// ValidateClientID checks a Spotify client ID: 32 hex characters.
func ValidateClientID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("client ID is required")
	}
	if len(s) != 32 {
		return errors.New("client ID should be 32 characters")
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return errors.New("client ID should only contain hex characters")
		}
	}
	return nil
}

// ValidateRedirectURI checks the OAuth redirect URI points at a loopback
// address verse can listen on.
func ValidateRedirectURI(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URI: %w", err)
	}
	if u.Scheme != "http" {
		return errors.New("redirect URI must use http")
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "[::1]", "::1":
	default:
		return errors.New("redirect URI must point at 127.0.0.1")
	}
	return nil
}
