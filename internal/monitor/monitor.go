// Package monitor keeps a live view of what is playing on Spotify.
//
// A Monitor fetches the currently-playing state on demand or on a fixed
// interval, classifies each observation and reports the interesting ones
// through Hooks. Detected tracks are recorded in a history sink.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/logging"
)

const (
	// DefaultInterval is the polling interval used when none is given.
	DefaultInterval = 2 * time.Second

	// DefaultTransferDelay is how long after a transfer the state is re-read.
	DefaultTransferDelay = time.Second

	followUpTimeout = 30 * time.Second
)

// Outcome classifies a single fetch.
type Outcome int

const (
	OutcomeUnauthenticated Outcome = iota
	OutcomeIdle
	OutcomeExpired
	OutcomeTrackChanged
	OutcomeProgressUpdate
	OutcomeTransientError
	// OutcomeSkipped means another fetch was already in flight.
	OutcomeSkipped
	// OutcomeDiscarded means polling stopped or restarted while the request
	// was in flight, so its result was dropped.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeIdle:
		return "idle"
	case OutcomeExpired:
		return "expired"
	case OutcomeTrackChanged:
		return "track_changed"
	case OutcomeProgressUpdate:
		return "progress_update"
	case OutcomeTransientError:
		return "transient_error"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// State is a copy of the monitor's view.
type State struct {
	Current      *core.Snapshot `json:"current"`
	Active       bool           `json:"active"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
}

// Hooks receive monitor notifications. Any of them may be nil. Hooks run on
// the goroutine that performed the fetch and must not call StopPolling or
// Close synchronously.
type Hooks struct {
	TrackDetected   func(core.Snapshot)
	ProgressRefresh func(core.Snapshot)
	Cleared         func()
	SessionExpired  func()
	TransientError  func(error)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithHooks sets the notification hooks.
func WithHooks(h Hooks) Option {
	return func(m *Monitor) { m.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithScope sets the history scope detected tracks are recorded under.
func WithScope(scope string) Option {
	return func(m *Monitor) { m.scope = scope }
}

// WithInterval sets the default polling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithTransferDelay sets the delay before re-reading state after a transfer.
func WithTransferDelay(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.transferDelay = d
		}
	}
}

// WithAutoStart starts polling after the first foreground detection.
func WithAutoStart(enabled bool) Option {
	return func(m *Monitor) { m.autoStart = enabled }
}

// WithBackgroundDetection treats track changes seen by polling like
// foreground detections: they are recorded and reported as TrackDetected.
func WithBackgroundDetection(enabled bool) Option {
	return func(m *Monitor) { m.backgroundDetection = enabled }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor synchronizes with the provider's currently-playing state.
type Monitor struct {
	provider core.Provider
	creds    core.CredentialStore
	sink     core.HistorySink

	hooks               Hooks
	logger              *log.Logger
	scope               string
	interval            time.Duration
	transferDelay       time.Duration
	autoStart           bool
	backgroundDetection bool
	now                 func() time.Time

	// inFlight admits one provider fetch at a time.
	inFlight atomic.Bool

	// lifecycle serializes StartPolling and StopPolling.
	lifecycle sync.Mutex

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	followUp   *time.Timer
}

// New creates a Monitor. sink may be nil, in which case nothing is recorded.
func New(provider core.Provider, creds core.CredentialStore, sink core.HistorySink, opts ...Option) *Monitor {
	m := &Monitor{
		provider:      provider,
		creds:         creds,
		sink:          sink,
		logger:        logging.Discard(),
		scope:         core.DefaultScope,
		interval:      DefaultInterval,
		transferDelay: DefaultTransferDelay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.Current = m.state.Current.Clone()
	return s
}

// Active reports whether polling is scheduled.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Active
}

// Interval returns the default polling interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Close stops polling and resets the state.
func (m *Monitor) Close() {
	m.StopPolling()

	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
}
