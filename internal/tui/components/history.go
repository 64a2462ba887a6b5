package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/tui/styles"
)

// History displays recently detected tracks
type History struct {
	selected int
	now      func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// SelectNext selects the next entry
func (h *History) SelectNext(count int) {
	if h.selected < count-1 {
		h.selected++
	}
}

// SelectPrev selects the previous entry
func (h *History) SelectPrev() {
	if h.selected > 0 {
		h.selected--
	}
}

// Selected returns the selected entry index
func (h *History) Selected() int {
	return h.selected
}

// Render renders the history panel
func (h *History) Render(entries []core.HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4, focused)
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

func (h *History) renderHistory(entries []core.HistoryEntry, width, maxLines int, focused bool) string {
	if h.selected >= len(entries) {
		h.selected = len(entries) - 1
	}
	if h.selected < 0 {
		h.selected = 0
	}

	lines := make([]string, 0, maxLines)

	// selector (2) + " - " (3) + gap before the time (1)
	const overhead = 6

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		timeAgo := FormatTimeAgo(entry.DetectedAt, h.now())
		available := width - overhead - len(timeAgo)

		title, artist := fit(entry.Title, entry.Artist, available)
		trackInfo := fmt.Sprintf("%s - %s", title, artist)

		padding := width - 2 - lipgloss.Width(trackInfo) - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		selector := "  "
		if focused && i == h.selected {
			selector = "▸ "
			trackInfo = styles.Highlight.Render(trackInfo)
		}

		lines = append(lines, fmt.Sprintf("%s%s%s%s",
			selector,
			trackInfo,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit truncates title and artist to share available columns, giving the
// artist at least a third of the space.
func fit(title, artist string, available int) (string, string) {
	titleLen := lipgloss.Width(title)
	artistLen := lipgloss.Width(artist)
	if titleLen+artistLen <= available {
		return title, artist
	}

	minArtist := available / 3
	if minArtist < 8 {
		minArtist = 8
	}
	if minArtist > available-8 {
		minArtist = available - 8
	}

	artistSpace := minArtist
	if artistLen < artistSpace {
		artistSpace = artistLen
	}
	return Truncate(title, available-artistSpace), Truncate(artist, artistSpace)
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// FormatTimeAgo renders the age of t compactly.
func FormatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
