// Package history keeps the list of detected tracks, most recent first.
package history

import (
	"time"

	"github.com/tessro/verse/internal/core"
)

// Window is how long a detection suppresses a new entry for the same track.
const Window = 24 * time.Hour

// Dedup merges entry into existing. The first entry for the same track
// detected less than Window before entry is replaced in place, keeping its
// ID and position. Otherwise entry is prepended. existing is not modified.
func Dedup(existing []core.HistoryEntry, entry core.HistoryEntry) []core.HistoryEntry {
	if i := Find(existing, entry); i >= 0 {
		out := make([]core.HistoryEntry, len(existing))
		copy(out, existing)
		entry.ID = existing[i].ID
		out[i] = entry
		return out
	}

	out := make([]core.HistoryEntry, 0, len(existing)+1)
	out = append(out, entry)
	return append(out, existing...)
}

// Find returns the index of the entry that entry would replace, or -1.
func Find(existing []core.HistoryEntry, entry core.HistoryEntry) int {
	for i, e := range existing {
		if e.TrackID != entry.TrackID {
			continue
		}
		if entry.DetectedAt.Sub(e.DetectedAt).Abs() < Window {
			return i
		}
	}
	return -1
}
