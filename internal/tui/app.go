package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/monitor"
	"github.com/tessro/verse/internal/tui/components"
	"github.com/tessro/verse/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelDevices
	PanelHistory
	panelCount
)

const (
	requestTimeout = 10 * time.Second
	messageTTL     = 5 * time.Second
	tickInterval   = time.Second
	historyLimit   = 50
)

// Monitor is the part of *monitor.Monitor the UI drives.
type Monitor interface {
	State() monitor.State
	FetchOnce(ctx context.Context, background bool) (monitor.Outcome, error)
	StartPolling(ctx context.Context, interval time.Duration)
	StopPolling()
	TransferPlayback(ctx context.Context, selector monitor.DeviceSelector) (core.Device, error)
}

// DeviceLister lists output devices.
type DeviceLister interface {
	Devices(ctx context.Context) ([]core.Device, error)
}

// App holds what the UI talks to
type App struct {
	monitor  Monitor
	devices  DeviceLister
	history  core.HistorySink
	scope    string
	poll     bool
	interval time.Duration
}

// Option configures an App.
type Option func(*App)

// WithScope sets the history scope shown.
func WithScope(scope string) Option {
	return func(a *App) { a.scope = scope }
}

// WithPolling starts polling when the UI opens.
func WithPolling(enabled bool, interval time.Duration) Option {
	return func(a *App) {
		a.poll = enabled
		a.interval = interval
	}
}

// NewApp creates a new TUI application. history may be nil.
func NewApp(m Monitor, devices DeviceLister, history core.HistorySink, opts ...Option) *App {
	a := &App{
		monitor: m,
		devices: devices,
		history: history,
		scope:   core.DefaultScope,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model is the main TUI model
type Model struct {
	app          *App
	ctx          context.Context
	width        int
	height       int
	focusedPanel Panel

	// State
	state   monitor.State
	devices []core.Device
	history []core.HistoryEntry

	// Components
	nowPlaying  *components.NowPlaying
	devicesView *components.Devices
	historyView *components.History
	help        help.Model

	showHelp bool

	// Status line
	lastError     error
	notice        string
	messageExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model. ctx bounds polling started from the UI.
func NewModel(ctx context.Context, app *App) Model {
	return Model{
		app:          app,
		ctx:          ctx,
		focusedPanel: PanelNowPlaying,
		state:        app.monitor.State(),
		nowPlaying:   components.NewNowPlaying(),
		devicesView:  components.NewDevices(),
		historyView:  components.NewHistory(),
		help:         help.New(),
	}
}

// Messages
type tickMsg time.Time
type fetchedMsg struct {
	outcome monitor.Outcome
	err     error
}
type pollingMsg struct{}
type devicesMsg []core.Device
type historyMsg []core.HistoryEntry
type transferredMsg core.Device
type removedMsg struct{}
type errMsg struct{ err error }

// Commands
func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refresh() tea.Cmd {
	mon := m.app.monitor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()

		outcome, err := mon.FetchOnce(ctx, false)
		return fetchedMsg{outcome: outcome, err: err}
	}
}

// Starting and stopping run off the update goroutine: StopPolling waits for
// the loop, and the loop may be blocked delivering a hook message.
func (m Model) startPolling() tea.Cmd {
	mon, ctx, interval := m.app.monitor, m.ctx, m.app.interval
	return func() tea.Msg {
		mon.StartPolling(ctx, interval)
		return pollingMsg{}
	}
}

func (m Model) stopPolling() tea.Cmd {
	mon := m.app.monitor
	return func() tea.Msg {
		mon.StopPolling()
		return pollingMsg{}
	}
}

func (m Model) fetchDevices() tea.Cmd {
	lister := m.app.devices
	if lister == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()

		devices, err := lister.Devices(ctx)
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg(devices)
	}
}

func (m Model) fetchHistory() tea.Cmd {
	sink, scope := m.app.history, m.app.scope
	if sink == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()

		entries, err := sink.List(ctx, scope, historyLimit)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(entries)
	}
}

func (m Model) transfer(selector monitor.DeviceSelector) tea.Cmd {
	mon := m.app.monitor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()

		device, err := mon.TransferPlayback(ctx, selector)
		if err != nil {
			return errMsg{err}
		}
		return transferredMsg(device)
	}
}

func (m Model) removeHistory(id string) tea.Cmd {
	sink := m.app.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()

		if err := sink.Remove(ctx, id); err != nil {
			return errMsg{err}
		}
		return removedMsg{}
	}
}

// Init starts the UI with a foreground fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), m.refresh(), m.fetchDevices(), m.fetchHistory()}
	if m.app.poll {
		cmds = append(cmds, m.startPolling())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.state = m.app.monitor.State()
		m.expireMessage(time.Time(msg))
		return m, tick()

	case trackDetectedMsg:
		m.state = m.app.monitor.State()
		return m, m.fetchHistory()

	case progressMsg, clearedMsg, pollingMsg:
		m.state = m.app.monitor.State()
		return m, nil

	case expiredMsg:
		m.state = m.app.monitor.State()
		m.setError(verrors.ErrSessionExpired)
		return m, nil

	case transientMsg:
		m.setError(msg.err)
		return m, nil

	case fetchedMsg:
		m.state = m.app.monitor.State()
		switch {
		case errors.Is(msg.err, verrors.ErrNothingPlaying):
			m.setNotice("Nothing is playing")
		case msg.err != nil:
			m.setError(msg.err)
		}
		return m, nil

	case devicesMsg:
		m.devices = msg
		return m, nil

	case historyMsg:
		m.history = msg
		return m, nil

	case transferredMsg:
		m.setNotice(fmt.Sprintf("Playback moved to %s", msg.Name))
		return m, m.fetchDevices()

	case removedMsg:
		return m, m.fetchHistory()

	case errMsg:
		m.setError(msg.err)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = true
	case key.Matches(msg, keys.Refresh):
		return m, tea.Batch(m.refresh(), m.fetchDevices(), m.fetchHistory())
	case key.Matches(msg, keys.Polling):
		if m.state.Active {
			return m, m.stopPolling()
		}
		return m, m.startPolling()
	case key.Matches(msg, keys.Transfer):
		return m, m.transfer(nil)
	case key.Matches(msg, keys.NextPane):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
	case key.Matches(msg, keys.PrevPane):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
	case key.Matches(msg, keys.Down):
		switch m.focusedPanel {
		case PanelDevices:
			m.devicesView.SelectNext(len(m.devices))
		case PanelHistory:
			m.historyView.SelectNext(len(m.history))
		}
	case key.Matches(msg, keys.Up):
		switch m.focusedPanel {
		case PanelDevices:
			m.devicesView.SelectPrev()
		case PanelHistory:
			m.historyView.SelectPrev()
		}
	case key.Matches(msg, keys.Select):
		if m.focusedPanel == PanelDevices {
			if i := m.devicesView.Selected(); i >= 0 && i < len(m.devices) {
				return m, m.transfer(monitor.DeviceByID(m.devices[i].ID))
			}
		}
	case key.Matches(msg, keys.Remove):
		if m.focusedPanel == PanelHistory && m.app.history != nil {
			if i := m.historyView.Selected(); i >= 0 && i < len(m.history) {
				return m, m.removeHistory(m.history[i].ID)
			}
		}
	}

	return m, nil
}

func (m *Model) setError(err error) {
	m.lastError = err
	m.notice = ""
	m.messageExpiry = time.Now().Add(messageTTL)
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.lastError = nil
	m.messageExpiry = time.Now().Add(messageTTL)
}

func (m *Model) expireMessage(now time.Time) {
	if now.After(m.messageExpiry) {
		m.lastError = nil
		m.notice = ""
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: Now Playing (top), Devices (bottom)
	// Right: History
	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 55 / 100
	bottomHeight := m.height - topHeight - 3
	fullHeight := m.height - 3

	nowPlaying := m.nowPlaying.Render(m.state.Current, m.state.Active, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	devicesView := m.devicesView.Render(m.devices, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelDevices)
	historyView := m.historyView.Render(m.history, rightWidth-2, fullHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, devicesView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, historyView)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(keys.ShortHelp())

	switch {
	case m.lastError != nil:
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
		if s := verrors.GetSuggestion(m.lastError); s != "" {
			status += styles.Dim.Render("  " + s)
		}
	case m.notice != "":
		status = styles.InfoText.Render(m.notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := styles.Title.Render("Verse - Keyboard Shortcuts")
	body := m.help.FullHelpView(keys.FullHelp())
	footer := styles.Dim.Render("Press ? or Esc to close")

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(content))
}

// Run starts the TUI and blocks until it exits or ctx is cancelled. bridge
// must be the one whose hooks the monitor was built with.
func Run(ctx context.Context, app *App, bridge *Bridge) error {
	p := tea.NewProgram(NewModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))

	bridge.Attach(p)
	defer bridge.Detach()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
