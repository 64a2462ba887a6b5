package monitor

import (
	"context"
	"time"
)

// StartPolling fetches in the background every interval until StopPolling,
// Close, an expired session or cancellation of ctx. Calling it while polling
// restarts the schedule. An interval of zero or less uses the default.
func (m *Monitor) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.interval
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.wait(m.halt())

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.cancel = cancel
	m.done = done
	m.state.Active = true
	m.mu.Unlock()

	m.logger.Debug("polling started", "interval", interval)
	go m.poll(loopCtx, gen, interval, done)
}

// StopPolling cancels polling and any pending transfer follow-up. It returns
// once the polling goroutine has exited. It is a no-op when not polling.
func (m *Monitor) StopPolling() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.wait(m.halt())
}

func (m *Monitor) poll(ctx context.Context, gen uint64, interval time.Duration, done chan struct{}) {
	defer close(done)
	defer m.loopExited(gen)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// A tick and a cancellation can be ready together.
		if ctx.Err() != nil {
			return
		}
		_, _ = m.fetch(ctx, true, gen)
	}
}

// loopExited marks polling inactive when the loop ended on its own because
// the caller's context was cancelled.
func (m *Monitor) loopExited(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return
	}
	m.generation++
	m.state.Active = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.done = nil
}

// halt cancels polling and returns the loop's done channel, if any.
func (m *Monitor) halt() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.haltLocked()
}

func (m *Monitor) haltLocked() chan struct{} {
	m.generation++
	if m.followUp != nil {
		m.followUp.Stop()
		m.followUp = nil
	}

	wasActive := m.state.Active
	m.state.Active = false

	if m.cancel == nil {
		return nil
	}
	m.cancel()
	m.cancel = nil
	done := m.done
	m.done = nil

	if wasActive {
		m.logger.Debug("polling stopped")
	}
	return done
}

func (m *Monitor) wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}

func (m *Monitor) currentGeneration() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *Monitor) isGeneration(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation == gen
}
