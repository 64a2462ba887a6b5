package core

import (
	"fmt"
	"time"
)

// DefaultScope is used when no user scope is configured.
const DefaultScope = "local"

// HistoryEntry is a detected track recorded in play history.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope"`
	TrackID     string    `json:"track_id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	DurationMs  int       `json:"duration_ms"`
	ExternalURL string    `json:"external_url,omitempty"`
	DetectedAt  time.Time `json:"detected_at"`
}

// NewHistoryEntry builds an entry for snap detected at the given time.
func NewHistoryEntry(scope string, snap *Snapshot, detectedAt time.Time) HistoryEntry {
	if scope == "" {
		scope = DefaultScope
	}
	return HistoryEntry{
		ID:          EntryID(snap.TrackID, detectedAt),
		Scope:       scope,
		TrackID:     snap.TrackID,
		Title:       snap.Title,
		Artist:      snap.Artist,
		Album:       snap.Album,
		DurationMs:  snap.DurationMs,
		ExternalURL: snap.ExternalURL,
		DetectedAt:  detectedAt,
	}
}

// EntryID returns the synthetic identity of a detection.
func EntryID(trackID string, detectedAt time.Time) string {
	return fmt.Sprintf("%s_%d", trackID, detectedAt.UnixMilli())
}
