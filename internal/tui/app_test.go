package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/history"
	"github.com/tessro/verse/internal/monitor"
)

type fakeMonitor struct {
	mu       sync.Mutex
	state    monitor.State
	fetchErr error
	devices  []core.Device
	started  int
	stopped  int
	fetches  int
}

func (f *fakeMonitor) State() monitor.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeMonitor) FetchOnce(ctx context.Context, background bool) (monitor.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return monitor.OutcomeIdle, f.fetchErr
}

func (f *fakeMonitor) StartPolling(ctx context.Context, interval time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	f.state.Active = true
}

func (f *fakeMonitor) StopPolling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	f.state.Active = false
}

func (f *fakeMonitor) TransferPlayback(ctx context.Context, selector monitor.DeviceSelector) (core.Device, error) {
	d, ok := monitor.SelectDevice(f.devices, selector)
	if !ok {
		return core.Device{}, verrors.ErrNoMatchingDevice
	}
	return d, nil
}

func (f *fakeMonitor) Devices(ctx context.Context) ([]core.Device, error) {
	return f.devices, nil
}

func newModel(f *fakeMonitor, sink core.HistorySink) Model {
	return NewModel(context.Background(), NewApp(f, f, sink))
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTogglePolling(t *testing.T) {
	f := &fakeMonitor{}
	m := newModel(f, nil)

	m, cmd := update(t, m, keyPress("p"))
	if cmd == nil {
		t.Fatal("expected a start command")
	}
	msg := cmd()
	if f.started != 1 {
		t.Fatalf("started = %d, want 1", f.started)
	}
	m, _ = update(t, m, msg)
	if !m.state.Active {
		t.Fatal("state should be active after start")
	}

	_, cmd = update(t, m, keyPress("p"))
	cmd()
	if f.stopped != 1 {
		t.Errorf("stopped = %d, want 1", f.stopped)
	}
}

func TestRefreshNothingPlaying(t *testing.T) {
	f := &fakeMonitor{fetchErr: verrors.ErrNothingPlaying}
	m := newModel(f, nil)

	m, _ = update(t, m, fetchedMsg{outcome: monitor.OutcomeIdle, err: f.fetchErr})
	if m.lastError != nil {
		t.Errorf("lastError = %v, want nil", m.lastError)
	}
	if m.notice == "" {
		t.Error("expected a notice")
	}
}

func TestSessionExpiredShowsError(t *testing.T) {
	m := newModel(&fakeMonitor{}, nil)
	m.width, m.height = 100, 30

	m, _ = update(t, m, expiredMsg{})
	if !errors.Is(m.lastError, verrors.ErrSessionExpired) {
		t.Fatalf("lastError = %v, want session expired", m.lastError)
	}
	if !strings.Contains(m.renderStatusBar(), "verse auth login") {
		t.Error("status bar should suggest logging in again")
	}
}

func TestMessagesExpire(t *testing.T) {
	m := newModel(&fakeMonitor{}, nil)
	m.setError(errors.New("boom"))

	m, _ = update(t, m, tickMsg(time.Now().Add(time.Minute)))
	if m.lastError != nil {
		t.Errorf("lastError = %v, want cleared", m.lastError)
	}
}

func TestTransferKey(t *testing.T) {
	f := &fakeMonitor{devices: []core.Device{
		{ID: "mac", Name: "MacBook", Kind: core.DeviceKindComputer},
		{ID: "phone", Name: "Pixel", Kind: core.DeviceKindSmartphone},
	}}
	m := newModel(f, nil)

	_, cmd := update(t, m, keyPress("t"))
	msg := cmd()
	got, ok := msg.(transferredMsg)
	if !ok {
		t.Fatalf("msg = %#v, want transferredMsg", msg)
	}
	if got.ID != "phone" {
		t.Errorf("device = %q, want phone", got.ID)
	}

	m, _ = update(t, m, msg)
	if !strings.Contains(m.notice, "Pixel") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestSelectDeviceTransfersIt(t *testing.T) {
	f := &fakeMonitor{devices: []core.Device{
		{ID: "mac", Name: "MacBook", Kind: core.DeviceKindComputer},
		{ID: "phone", Name: "Pixel", Kind: core.DeviceKindSmartphone},
	}}
	m := newModel(f, nil)
	m, _ = update(t, m, devicesMsg(f.devices))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focusedPanel != PanelDevices {
		t.Fatalf("focused = %d, want devices", m.focusedPanel)
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := cmd().(transferredMsg); got.ID != "mac" {
		t.Errorf("device = %q, want mac", got.ID)
	}
}

func TestTrackDetectedReloadsHistory(t *testing.T) {
	sink := history.NewMemorySink(0)
	snap := &core.Snapshot{TrackID: "t1", Title: "Song"}
	_ = sink.Append(context.Background(), core.NewHistoryEntry(core.DefaultScope, snap, time.Now()))

	m := newModel(&fakeMonitor{}, sink)
	m, cmd := update(t, m, trackDetectedMsg(*snap))
	if cmd == nil {
		t.Fatal("expected a history reload")
	}
	m, _ = update(t, m, cmd())
	if len(m.history) != 1 || m.history[0].TrackID != "t1" {
		t.Errorf("history = %+v", m.history)
	}
}

func TestRemoveHistoryEntry(t *testing.T) {
	sink := history.NewMemorySink(0)
	snap := &core.Snapshot{TrackID: "t1", Title: "Song"}
	_ = sink.Append(context.Background(), core.NewHistoryEntry(core.DefaultScope, snap, time.Now()))
	entries, _ := sink.List(context.Background(), core.DefaultScope, 0)

	m := newModel(&fakeMonitor{}, sink)
	m, _ = update(t, m, historyMsg(entries))
	m.focusedPanel = PanelHistory

	_, cmd := update(t, m, keyPress("x"))
	if _, ok := cmd().(removedMsg); !ok {
		t.Fatal("expected removedMsg")
	}
	left, _ := sink.List(context.Background(), core.DefaultScope, 0)
	if len(left) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(left))
	}
}

func TestBridgeDropsWhenDetached(t *testing.T) {
	b := NewBridge()
	hooks := b.Hooks()

	hooks.TrackDetected(core.Snapshot{TrackID: "t1"})
	hooks.Cleared()
	hooks.SessionExpired()
	hooks.TransientError(errors.New("boom"))
}

func TestViewRendersPanels(t *testing.T) {
	f := &fakeMonitor{state: monitor.State{
		Current: &core.Snapshot{TrackID: "t1", Title: "Song Title", Artist: "Artist"},
	}}
	m := newModel(f, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	for _, want := range []string{"Now Playing", "Devices", "History", "Song Title"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
