package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/tui/styles"
)

// DeviceModel is the bubbletea model for the device picker.
type DeviceModel struct {
	devices  []core.Device
	cursor   int
	selected *core.Device
}

// NewDeviceModel creates a new device picker model. The cursor starts on
// the active device, if any.
func NewDeviceModel(devices []core.Device) DeviceModel {
	m := DeviceModel{devices: devices}
	for i, d := range devices {
		if d.IsActive {
			m.cursor = i
			break
		}
	}
	return m
}

// Init initializes the model.
func (m DeviceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DeviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit

	case "enter", " ":
		if m.cursor < len(m.devices) && !m.devices[m.cursor].IsRestricted {
			m.selected = &m.devices[m.cursor]
			return m, tea.Quit
		}

	case "up", "k", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j", "ctrl+n":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		if len(m.devices) > 0 {
			m.cursor = len(m.devices) - 1
		}
	}

	return m, nil
}

// View renders the model.
func (m DeviceModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Move playback to"))
	b.WriteString("\n\n")

	if len(m.devices) == 0 {
		b.WriteString(styles.Muted.Render("No devices found"))
		b.WriteString("\n\n")
		b.WriteString(styles.Dim.Render("Open Spotify on the device you want to use, then try again."))
		return b.String()
	}

	for i, d := range m.devices {
		cursor := "  "
		name := d.Name
		if i == m.cursor {
			cursor = styles.Highlight.Render("▸ ")
			name = styles.Title.Render(name)
		}

		line := cursor + styles.DeviceIcon(d.Kind) + " " + name + " " + styles.Dim.Render("("+d.Kind+")")
		if d.IsActive {
			line += styles.Playing.Render(" ●")
		}
		if d.IsRestricted {
			line += styles.Dim.Render(" restricted")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓ navigate • enter select • esc cancel"))
	return b.String()
}

// Selected returns the selected device, or nil if none.
func (m DeviceModel) Selected() *core.Device {
	return m.selected
}

// RunDevicePicker runs the device picker and returns the selected device, or
// nil when the user cancelled.
func RunDevicePicker(devices []core.Device) (*core.Device, error) {
	p := tea.NewProgram(NewDeviceModel(devices))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(DeviceModel).Selected(), nil
}
