package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/monitor"
)

// Hook messages delivered to the model.
type (
	trackDetectedMsg core.Snapshot
	progressMsg      core.Snapshot
	clearedMsg       struct{}
	expiredMsg       struct{}
	transientMsg     struct{ err error }
)

// Bridge forwards monitor hooks to a running program. The monitor is built
// before the program exists, so hooks are bound first and the program is
// attached when it starts. Messages sent while detached are dropped.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

// NewBridge creates a detached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach directs messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// Detach stops forwarding.
func (b *Bridge) Detach() {
	b.Attach(nil)
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// Hooks returns monitor hooks that feed the program.
func (b *Bridge) Hooks() monitor.Hooks {
	return monitor.Hooks{
		TrackDetected:   func(s core.Snapshot) { b.send(trackDetectedMsg(s)) },
		ProgressRefresh: func(s core.Snapshot) { b.send(progressMsg(s)) },
		Cleared:         func() { b.send(clearedMsg{}) },
		SessionExpired:  func() { b.send(expiredMsg{}) },
		TransientError:  func(err error) { b.send(transientMsg{err: err}) },
	}
}
