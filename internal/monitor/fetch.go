package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/spotify/player"
)

// FetchOnce reads the currently-playing state once and reconciles it with
// the cached snapshot. Background fetches are the ones made by polling:
// their failures are logged rather than returned, and a track change they
// notice refreshes listeners without being recorded.
func (m *Monitor) FetchOnce(ctx context.Context, background bool) (Outcome, error) {
	return m.fetch(ctx, background, m.currentGeneration())
}

// fetch runs one fetch. A background fetch belongs to generation gen and is
// discarded if polling stopped or restarted since.
func (m *Monitor) fetch(ctx context.Context, background bool, gen uint64) (Outcome, error) {
	if background && !m.isGeneration(gen) {
		return OutcomeDiscarded, nil
	}

	if err := m.checkCredentials(); err != nil {
		return OutcomeUnauthenticated, err
	}

	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.Debug("fetch skipped, another is in flight", "background", background)
		return OutcomeSkipped, nil
	}
	defer m.inFlight.Store(false)

	payload, err := m.provider.CurrentlyPlaying(ctx)
	observedAt := m.now()

	if background && !m.isGeneration(gen) {
		m.logger.Debug("discarding result of a stopped poll")
		return OutcomeDiscarded, nil
	}

	var outcome Outcome
	switch {
	case verrors.Is(err, verrors.ErrSessionExpired):
		outcome, err = m.expire()
	case verrors.Is(err, verrors.ErrNotAuthenticated):
		outcome = OutcomeUnauthenticated
	case err != nil:
		outcome, err = m.transient(background, err)
	default:
		snap := player.Normalize(payload, observedAt)
		if snap == nil {
			outcome, err = m.idle(background, observedAt)
		} else {
			outcome, err = m.reconcile(ctx, background, snap, observedAt)
		}
	}

	m.logger.Debug("fetch", "outcome", outcome, "background", background)
	return outcome, err
}

func (m *Monitor) checkCredentials() error {
	token, err := m.creds.Get()
	if err != nil {
		return fmt.Errorf("%w: %w", verrors.ErrNotAuthenticated, err)
	}
	if token == nil || token.AccessToken == "" {
		return verrors.ErrNotAuthenticated
	}
	return nil
}

// expire invalidates the credential, stops polling without waiting for the
// loop (this may be the loop) and resets the state.
func (m *Monitor) expire() (Outcome, error) {
	m.logger.Warn("spotify session expired, clearing credentials")
	if err := m.creds.Clear(); err != nil {
		m.logger.Error("failed to clear credentials", "err", err)
	}

	m.mu.Lock()
	m.haltLocked()
	m.state = State{}
	m.mu.Unlock()

	if m.hooks.SessionExpired != nil {
		m.hooks.SessionExpired()
	}
	return OutcomeExpired, verrors.ErrSessionExpired
}

func (m *Monitor) transient(background bool, err error) (Outcome, error) {
	if background {
		m.logger.Warn("poll failed", "err", err)
		return OutcomeTransientError, nil
	}

	err = verrors.Transient(err)
	if m.hooks.TransientError != nil {
		m.hooks.TransientError(err)
	}
	return OutcomeTransientError, err
}

func (m *Monitor) idle(background bool, observedAt time.Time) (Outcome, error) {
	m.mu.Lock()
	m.state.LastSyncedAt = observedAt
	cleared := background && m.state.Current != nil
	if cleared {
		m.state.Current = nil
	}
	m.mu.Unlock()

	if cleared && m.hooks.Cleared != nil {
		m.hooks.Cleared()
	}
	if !background {
		return OutcomeIdle, verrors.ErrNothingPlaying
	}
	return OutcomeIdle, nil
}

func (m *Monitor) reconcile(ctx context.Context, background bool, snap *core.Snapshot, observedAt time.Time) (Outcome, error) {
	m.mu.Lock()
	prev := m.state.Current
	m.state.Current = snap
	m.state.LastSyncedAt = observedAt
	m.mu.Unlock()

	if prev.SameTrack(snap) {
		m.refresh(snap)
		return OutcomeProgressUpdate, nil
	}

	if background && !m.backgroundDetection {
		m.refresh(snap)
		return OutcomeTrackChanged, nil
	}

	m.record(ctx, snap, observedAt)
	if m.hooks.TrackDetected != nil {
		m.hooks.TrackDetected(*snap.Clone())
	}

	if !background && m.autoStart && !m.Active() {
		m.StartPolling(context.WithoutCancel(ctx), 0)
	}
	return OutcomeTrackChanged, nil
}

func (m *Monitor) refresh(snap *core.Snapshot) {
	if m.hooks.ProgressRefresh != nil {
		m.hooks.ProgressRefresh(*snap.Clone())
	}
}

// record appends a history entry. Failures are logged only.
func (m *Monitor) record(ctx context.Context, snap *core.Snapshot, detectedAt time.Time) {
	if m.sink == nil {
		return
	}
	entry := core.NewHistoryEntry(m.scope, snap, detectedAt)
	if err := m.sink.Append(ctx, entry); err != nil {
		m.logger.Error("failed to record history", "track", snap.TrackID, "err", err)
	}
}
