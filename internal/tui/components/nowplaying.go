package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/tui/styles"
)

// NowPlaying displays the current snapshot
type NowPlaying struct {
	bar progress.Model
}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{
		bar: progress.New(
			progress.WithSolidFill(string(styles.Primary)),
			progress.WithoutPercentage(),
		),
	}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap *core.Snapshot, active bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused) + " " + styles.PollingIcon(active)

	var content string
	if snap == nil {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderTrack(snap, width-4)
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

func (n *NowPlaying) renderTrack(snap *core.Snapshot, width int) string {
	icon := styles.StatusIcon(snap.IsPlaying)
	title := styles.Title.Width(width - 4).Render(snap.Title)

	artist := styles.Subtitle.Render(snap.Artist)
	album := styles.Dim.Render(snap.Album)

	// Leave room for the clocks on either side
	n.bar.Width = width - 14
	if n.bar.Width < 10 {
		n.bar.Width = 10
	}
	bar := n.bar.ViewAs(float64(snap.ProgressPercent) / 100)
	progressLine := fmt.Sprintf("%s %s %s", snap.ProgressText, bar, snap.DurationText)

	device := styles.Muted.Render(fmt.Sprintf("%s %s", styles.DeviceIcon(snap.DeviceKind), snap.DeviceName))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progressLine,
		"",
		device,
	)
}
