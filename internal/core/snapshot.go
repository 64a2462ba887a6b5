package core

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is a normalized point-in-time view of remote playback state.
// A nil *Snapshot means nothing is playing.
type Snapshot struct {
	TrackID     string    `json:"track_id"`
	Title       string    `json:"title"`
	Artists     []string  `json:"artists"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	DurationMs  int       `json:"duration_ms"`
	ProgressMs  int       `json:"progress_ms"`
	IsPlaying   bool      `json:"is_playing"`
	DeviceName  string    `json:"device_name"`
	DeviceKind  string    `json:"device_kind"`
	ExternalURL string    `json:"external_url,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`

	// Display fields derived from ProgressMs and DurationMs.
	ProgressText    string `json:"progress_text"`
	DurationText    string `json:"duration_text"`
	ProgressPercent int    `json:"progress_percent"`
}

// SameTrack reports whether s and other refer to the same track. Snapshots
// without a track ID never match.
func (s *Snapshot) SameTrack(other *Snapshot) bool {
	if s == nil || other == nil || s.TrackID == "" {
		return false
	}
	return s.TrackID == other.TrackID
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Artists != nil {
		c.Artists = append([]string(nil), s.Artists...)
	}
	return &c
}

// FormatClock formats milliseconds as M:SS. Minutes are unbounded.
func FormatClock(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ProgressPercent returns round(progress/duration*100) clamped to [0,100].
// A zero duration yields 0.
func ProgressPercent(progressMs, durationMs int) int {
	if durationMs <= 0 || progressMs <= 0 {
		return 0
	}
	p := int(math.Round(float64(progressMs) / float64(durationMs) * 100))
	if p > 100 {
		return 100
	}
	return p
}
