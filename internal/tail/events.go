package tail

import (
	"sync"
	"time"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/monitor"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackDetected EventType = iota
	EventTrackChange
	EventPause
	EventResume
	EventDeviceChange
	EventCleared
	EventSessionExpired
	EventError
)

// Event is something worth printing about playback.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.Snapshot
	Current   *core.Snapshot
	Err       error
}

// Record is the JSON form of an event.
type Record struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Track     *core.Snapshot `json:"track,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Record converts the event for JSON output.
func (e Event) Record() Record {
	r := Record{
		Type:      eventTypeName(e.Type),
		Timestamp: e.Timestamp,
		Track:     e.Current,
	}
	if e.Err != nil {
		r.Error = e.Err.Error()
	}
	return r
}

// Watcher turns monitor notifications into a stream of events. Refreshes
// are compared with the previous snapshot to find pauses, resumes, device
// switches and track changes noticed by polling.
type Watcher struct {
	mu     sync.Mutex
	prev   *core.Snapshot
	events chan Event
	closed bool
	now    func() time.Time
}

// NewWatcher creates a watcher whose channel holds up to buffer events.
func NewWatcher(buffer int) *Watcher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Watcher{
		events: make(chan Event, buffer),
		now:    time.Now,
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close closes the event channel. Later notifications are dropped.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
}

// Hooks returns monitor hooks that feed this watcher.
func (w *Watcher) Hooks() monitor.Hooks {
	return monitor.Hooks{
		TrackDetected:   w.trackDetected,
		ProgressRefresh: w.progressRefresh,
		Cleared:         w.cleared,
		SessionExpired:  w.sessionExpired,
		TransientError:  w.transientError,
	}
}

func (w *Watcher) trackDetected(s core.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emitLocked(Event{Type: EventTrackDetected, Previous: w.prev, Current: &s})
	w.prev = &s
}

func (w *Watcher) progressRefresh(s core.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.prev
	w.prev = &s
	for _, e := range diffSnapshots(prev, &s) {
		w.emitLocked(e)
	}
}

func (w *Watcher) cleared() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emitLocked(Event{Type: EventCleared, Previous: w.prev})
	w.prev = nil
}

func (w *Watcher) sessionExpired() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emitLocked(Event{Type: EventSessionExpired, Previous: w.prev})
	w.prev = nil
}

func (w *Watcher) transientError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emitLocked(Event{Type: EventError, Current: w.prev, Err: err})
}

func (w *Watcher) emitLocked(e Event) {
	if w.closed {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = w.now()
	}
	select {
	case w.events <- e:
	default:
		// Drop event if channel is full
	}
}

// diffSnapshots compares two snapshots of a refresh and returns the
// detected events.
func diffSnapshots(prev, curr *core.Snapshot) []Event {
	if curr == nil {
		return nil
	}

	// First refresh or a change noticed by polling
	if !prev.SameTrack(curr) {
		return []Event{{Type: EventTrackChange, Previous: prev, Current: curr}}
	}

	var events []Event

	if prev.IsPlaying && !curr.IsPlaying {
		events = append(events, Event{Type: EventPause, Previous: prev, Current: curr})
	} else if !prev.IsPlaying && curr.IsPlaying {
		events = append(events, Event{Type: EventResume, Previous: prev, Current: curr})
	}

	if prev.DeviceName != curr.DeviceName {
		events = append(events, Event{Type: EventDeviceChange, Previous: prev, Current: curr})
	}

	return events
}
