package player

import (
	"testing"
	"time"

	"github.com/tessro/verse/internal/core"
)

var observed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	payload := []byte(`{
		"progress_ms": 61000,
		"is_playing": true,
		"item": {
			"id": "4uLU6hMCjMI75M1A2tKUQC",
			"name": "Never Gonna Give You Up",
			"duration_ms": 213000,
			"artists": [{"name": "Rick Astley"}, {"name": "Stock Aitken Waterman"}],
			"album": {"name": "Whenever You Need Somebody"},
			"external_urls": {"spotify": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"}
		},
		"device": {"name": "Kitchen", "type": "Speaker"}
	}`)

	snap := Normalize(payload, observed)
	if snap == nil {
		t.Fatal("Normalize() = nil")
	}

	want := core.Snapshot{
		TrackID:         "4uLU6hMCjMI75M1A2tKUQC",
		Title:           "Never Gonna Give You Up",
		Artist:          "Rick Astley, Stock Aitken Waterman",
		Album:           "Whenever You Need Somebody",
		DurationMs:      213000,
		ProgressMs:      61000,
		IsPlaying:       true,
		DeviceName:      "Kitchen",
		DeviceKind:      "Speaker",
		ExternalURL:     "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		ProgressText:    "1:01",
		DurationText:    "3:33",
		ProgressPercent: 29,
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"TrackID", snap.TrackID, want.TrackID},
		{"Title", snap.Title, want.Title},
		{"Artist", snap.Artist, want.Artist},
		{"Album", snap.Album, want.Album},
		{"DurationMs", snap.DurationMs, want.DurationMs},
		{"ProgressMs", snap.ProgressMs, want.ProgressMs},
		{"IsPlaying", snap.IsPlaying, want.IsPlaying},
		{"DeviceName", snap.DeviceName, want.DeviceName},
		{"DeviceKind", snap.DeviceKind, want.DeviceKind},
		{"ExternalURL", snap.ExternalURL, want.ExternalURL},
		{"ProgressText", snap.ProgressText, want.ProgressText},
		{"DurationText", snap.DurationText, want.DurationText},
		{"ProgressPercent", snap.ProgressPercent, want.ProgressPercent},
		{"Artists", len(snap.Artists), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
	if !snap.ObservedAt.Equal(observed) {
		t.Errorf("ObservedAt = %v, want %v", snap.ObservedAt, observed)
	}
}

func TestNormalizeReturnsNil(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ``},
		{"malformed", `{"item": {`},
		{"not an object", `[1,2,3]`},
		{"null", `null`},
		{"missing item", `{"is_playing": false, "progress_ms": 0}`},
		{"null item", `{"item": null}`},
		{"empty id", `{"item": {"id": "", "name": "Ad"}}`},
		{"wrong types", `{"item": {"id": 42}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if snap := Normalize([]byte(tt.payload), observed); snap != nil {
				t.Errorf("Normalize() = %+v, want nil", snap)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	snap := Normalize([]byte(`{"item": {"id": "t1", "name": "Song"}}`), observed)
	if snap == nil {
		t.Fatal("Normalize() = nil")
	}

	if snap.DeviceName != core.UnknownDeviceName {
		t.Errorf("DeviceName = %q, want %q", snap.DeviceName, core.UnknownDeviceName)
	}
	if snap.DeviceKind != core.UnknownDeviceKind {
		t.Errorf("DeviceKind = %q, want %q", snap.DeviceKind, core.UnknownDeviceKind)
	}
	if snap.ProgressPercent != 0 {
		t.Errorf("ProgressPercent = %d, want 0 without a duration", snap.ProgressPercent)
	}
	if snap.ProgressText != "0:00" || snap.DurationText != "0:00" {
		t.Errorf("texts = %q/%q, want 0:00/0:00", snap.ProgressText, snap.DurationText)
	}
	if snap.Artist != "" || len(snap.Artists) != 0 {
		t.Errorf("Artist = %q, Artists = %v, want empty", snap.Artist, snap.Artists)
	}
}

func TestNormalizeClamps(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantPercent int
		wantProg    int
		wantText    string
	}{
		{
			name:        "negative progress",
			payload:     `{"progress_ms": -500, "item": {"id": "t", "duration_ms": 1000}}`,
			wantPercent: 0,
			wantProg:    0,
			wantText:    "0:00",
		},
		{
			name:        "progress past duration",
			payload:     `{"progress_ms": 5000, "item": {"id": "t", "duration_ms": 1000}}`,
			wantPercent: 100,
			wantProg:    5000,
			wantText:    "0:05",
		},
		{
			name:        "long track minutes unbounded",
			payload:     `{"progress_ms": 3723000, "item": {"id": "t", "duration_ms": 7200000}}`,
			wantPercent: 52,
			wantProg:    3723000,
			wantText:    "62:03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Normalize([]byte(tt.payload), observed)
			if snap == nil {
				t.Fatal("Normalize() = nil")
			}
			if snap.ProgressPercent != tt.wantPercent {
				t.Errorf("ProgressPercent = %d, want %d", snap.ProgressPercent, tt.wantPercent)
			}
			if snap.ProgressMs != tt.wantProg {
				t.Errorf("ProgressMs = %d, want %d", snap.ProgressMs, tt.wantProg)
			}
			if snap.ProgressText != tt.wantText {
				t.Errorf("ProgressText = %q, want %q", snap.ProgressText, tt.wantText)
			}
		})
	}
}

func TestNormalizeTopLevelExternalURL(t *testing.T) {
	snap := Normalize([]byte(`{"item": {"id": "t"}, "external_urls": {"spotify": "https://open.spotify.com/x"}}`), observed)
	if snap == nil || snap.ExternalURL != "https://open.spotify.com/x" {
		t.Errorf("ExternalURL = %+v", snap)
	}
}
