package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/tui/styles"
)

// Devices displays available playback devices
type Devices struct {
	selected int
}

// NewDevices creates a new Devices component
func NewDevices() *Devices {
	return &Devices{}
}

// SelectNext selects the next device
func (d *Devices) SelectNext(count int) {
	if d.selected < count-1 {
		d.selected++
	}
}

// SelectPrev selects the previous device
func (d *Devices) SelectPrev() {
	if d.selected > 0 {
		d.selected--
	}
}

// Selected returns the selected device index
func (d *Devices) Selected() int {
	return d.selected
}

// Render renders the devices panel
func (d *Devices) Render(devices []core.Device, width, height int, focused bool) string {
	title := styles.PanelTitle("Devices", focused)

	var content string
	if len(devices) == 0 {
		content = styles.Muted.Render("No devices found")
	} else {
		content = d.renderDevices(devices, height-4, focused)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (d *Devices) renderDevices(devices []core.Device, maxLines int, focused bool) string {
	if d.selected >= len(devices) {
		d.selected = len(devices) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}

	lines := make([]string, 0, len(devices))
	for i, device := range devices {
		if len(lines) >= maxLines {
			break
		}

		selector := "  "
		name := device.Name
		if focused && i == d.selected {
			selector = "▸ "
			name = styles.Highlight.Render(name)
		}

		active := ""
		if device.IsActive {
			active = styles.Playing.Render(" ●")
		}

		lines = append(lines, fmt.Sprintf("%s%s %s%s", selector, styles.DeviceIcon(device.Kind), name, active))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
