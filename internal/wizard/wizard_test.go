package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/verse/internal/config"
	"github.com/tessro/verse/internal/core"
)

func TestNeedsDevice(t *testing.T) {
	desktop := core.Device{ID: "mac", Name: "MacBook", Kind: core.DeviceKindComputer}
	phone := core.Device{ID: "phone", Name: "Pixel", Kind: core.DeviceKindSmartphone}

	tests := []struct {
		name    string
		flag    string
		devices []core.Device
		want    bool
	}{
		{"named device", "MacBook", []core.Device{desktop}, false},
		{"phone available", "", []core.Device{desktop, phone}, false},
		{"no phone", "", []core.Device{desktop}, true},
		{"no devices", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsDevice(tt.flag, tt.devices); got != tt.want {
				t.Errorf("NeedsDevice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetActiveDevice(t *testing.T) {
	devices := []core.Device{{ID: "a"}, {ID: "b", IsActive: true}}
	if got := GetActiveDevice(devices); got == nil || got.ID != "b" {
		t.Errorf("GetActiveDevice() = %v, want b", got)
	}

	devices[0].IsActive = true
	if got := GetActiveDevice(devices); got != nil {
		t.Errorf("GetActiveDevice() = %v, want nil with two active", got)
	}
}

func TestDeviceModelSelection(t *testing.T) {
	devices := []core.Device{
		{ID: "a", Name: "One", Kind: core.DeviceKindComputer},
		{ID: "b", Name: "Two", Kind: core.DeviceKindSpeaker, IsActive: true},
		{ID: "c", Name: "Three", Kind: core.DeviceKindTV, IsRestricted: true},
	}
	m := NewDeviceModel(devices)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want the active device", m.cursor)
	}

	press := func(m DeviceModel, k string) DeviceModel {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		return next.(DeviceModel)
	}

	m = press(m, "j")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(DeviceModel)
	if m.Selected() != nil {
		t.Error("restricted devices should not be selectable")
	}

	m = press(m, "k")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(DeviceModel)
	if m.Selected() == nil || m.Selected().ID != "b" {
		t.Fatalf("Selected() = %v, want b", m.Selected())
	}
	if cmd == nil {
		t.Error("selecting should quit the picker")
	}

	if !strings.Contains(m.View(), "Three") {
		t.Error("view should list every device")
	}
}

func TestValidateClientID(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0123456789abcdef0123456789ABCDEF", false},
		{"", true},
		{"short", true},
		{"0123456789abcdef0123456789abcdeg", true},
	}
	for _, tt := range tests {
		if err := ValidateClientID(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateClientID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidateRedirectURI(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"http://127.0.0.1:8888/callback", false},
		{"http://localhost:9000/cb", false},
		{"https://127.0.0.1/callback", true},
		{"http://example.com/callback", true},
	}
	for _, tt := range tests {
		if err := ValidateRedirectURI(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateRedirectURI(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestSetupAnswersApply(t *testing.T) {
	cfg := config.Default()
	a := NewSetupAnswers(cfg)
	if a.Interval != "2000" {
		t.Fatalf("Interval = %q, want the configured default", a.Interval)
	}

	a.ClientID = " 0123456789abcdef0123456789abcdef "
	a.Interval = "5000"
	a.AutoStart = false
	a.Record = true
	if err := a.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if cfg.Spotify.ClientID != "0123456789abcdef0123456789abcdef" {
		t.Errorf("ClientID = %q", cfg.Spotify.ClientID)
	}
	if cfg.Monitor.Interval != 5000 || cfg.Monitor.AutoStart || !cfg.Monitor.BackgroundDetection {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}

	a.Interval = "soon"
	if err := a.Apply(cfg); err == nil {
		t.Error("Apply() expected an error for a bad interval")
	}
}
