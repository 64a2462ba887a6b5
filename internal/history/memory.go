package history

import (
	"context"
	"errors"
	"sync"

	"github.com/tessro/verse/internal/core"
)

// ErrNotFound is returned when removing an entry that does not exist.
var ErrNotFound = errors.New("history entry not found")

// MemorySink is a core.HistorySink that lives only as long as the process.
type MemorySink struct {
	mu         sync.Mutex
	entries    map[string][]core.HistoryEntry
	maxEntries int
}

// NewMemorySink creates an empty sink. maxEntries caps each scope; zero or
// less keeps everything.
func NewMemorySink(maxEntries int) *MemorySink {
	return &MemorySink{
		entries:    make(map[string][]core.HistoryEntry),
		maxEntries: maxEntries,
	}
}

// Append records entry, collapsing repeat detections of the same track.
func (s *MemorySink) Append(_ context.Context, entry core.HistoryEntry) error {
	if entry.Scope == "" {
		entry.Scope = core.DefaultScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := Dedup(s.entries[entry.Scope], entry)
	if s.maxEntries > 0 && len(merged) > s.maxEntries {
		merged = merged[:s.maxEntries]
	}
	s.entries[entry.Scope] = merged
	return nil
}

// List returns up to limit entries for scope, most recent first. A limit of
// zero or less returns all of them.
func (s *MemorySink) List(_ context.Context, scope string, limit int) ([]core.HistoryEntry, error) {
	if scope == "" {
		scope = core.DefaultScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[scope]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]core.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// Remove deletes the entry with id from any scope.
func (s *MemorySink) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for scope, entries := range s.entries {
		for i, e := range entries {
			if e.ID != id {
				continue
			}
			out := make([]core.HistoryEntry, 0, len(entries)-1)
			out = append(out, entries[:i]...)
			s.entries[scope] = append(out, entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Clear drops every entry in scope.
func (s *MemorySink) Clear(_ context.Context, scope string) error {
	if scope == "" {
		scope = core.DefaultScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, scope)
	return nil
}

var _ core.HistorySink = (*MemorySink)(nil)
