package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
)

type response struct {
	payload []byte
	err     error
}

// fakeProvider serves queued responses; the last one repeats.
type fakeProvider struct {
	mu        sync.Mutex
	responses []response
	calls     int

	// When set, CurrentlyPlaying signals started and waits for release.
	started chan struct{}
	release chan struct{}

	devices     []core.Device
	devicesErr  error
	transferErr error
	transfers   []string
}

func (p *fakeProvider) queue(rs ...response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, rs...)
}

func (p *fakeProvider) CurrentlyPlaying(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	p.calls++
	started, release := p.started, p.release
	var r response
	if len(p.responses) > 0 {
		r = p.responses[0]
		if len(p.responses) > 1 {
			p.responses = p.responses[1:]
		}
	}
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return r.payload, r.err
}

func (p *fakeProvider) Devices(ctx context.Context) ([]core.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.devices, p.devicesErr
}

func (p *fakeProvider) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transferErr != nil {
		return p.transferErr
	}
	p.transfers = append(p.transfers, deviceID)
	return nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeCreds struct {
	mu      sync.Mutex
	token   *oauth2.Token
	cleared int
}

func loggedIn() *fakeCreds {
	return &fakeCreds{token: &oauth2.Token{AccessToken: "access"}}
}

func (c *fakeCreds) Get() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *fakeCreds) Set(t *oauth2.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
	return nil
}

func (c *fakeCreds) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	c.cleared++
	return nil
}

type failingSink struct{}

func (failingSink) Append(context.Context, core.HistoryEntry) error { return errors.New("disk full") }
func (failingSink) List(context.Context, string, int) ([]core.HistoryEntry, error) {
	return nil, nil
}
func (failingSink) Remove(context.Context, string) error { return nil }
func (failingSink) Clear(context.Context, string) error { return nil }

// recorder counts hook calls.
type recorder struct {
	mu        sync.Mutex
	detected  []core.Snapshot
	refreshed []core.Snapshot
	cleared   int
	expired   int
	errs      []error

	expiredCh   chan struct{}
	refreshedCh chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		expiredCh:   make(chan struct{}, 8),
		refreshedCh: make(chan struct{}, 64),
	}
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		TrackDetected: func(s core.Snapshot) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.detected = append(r.detected, s)
		},
		ProgressRefresh: func(s core.Snapshot) {
			r.mu.Lock()
			r.refreshed = append(r.refreshed, s)
			r.mu.Unlock()
			select {
			case r.refreshedCh <- struct{}{}:
			default:
			}
		},
		Cleared: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.cleared++
		},
		SessionExpired: func() {
			r.mu.Lock()
			r.expired++
			r.mu.Unlock()
			select {
			case r.expiredCh <- struct{}{}:
			default:
			}
		},
		TransientError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
	}
}

func (r *recorder) counts() (detected, refreshed, cleared, expired, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.detected), len(r.refreshed), r.cleared, r.expired, len(r.errs)
}

func playing(trackID string, progressMs int) response {
	return response{payload: []byte(fmt.Sprintf(`{
		"progress_ms": %d,
		"is_playing": true,
		"item": {
			"id": %q,
			"name": "Song %s",
			"duration_ms": 200000,
			"artists": [{"name": "Artist"}],
			"album": {"name": "Album"}
		},
		"device": {"name": "Desk", "type": "Computer"}
	}`, progressMs, trackID, trackID))}
}

func nothingPlaying() response {
	return response{}
}

func expiredResponse() response {
	return response{err: fmt.Errorf("spotify: %w", verrors.ErrSessionExpired)}
}

func failure() response {
	return response{err: verrors.Transient(errors.New("connection reset"))}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
