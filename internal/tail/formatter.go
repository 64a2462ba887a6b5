package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. Invalid templates are
// reported by ParseTemplate; here they are ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if t, err := ParseTemplate(tmpl); err == nil {
			f.template = t
		}
	}
}

// ParseTemplate parses a line template. An empty string yields nil.
func ParseTemplate(tmpl string) (*template.Template, error) {
	if tmpl == "" {
		return nil, nil
	}
	return template.New("format").Parse(tmpl)
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	parts = append(parts, eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if s := e.Current; s != nil {
		data.TrackID = s.TrackID
		data.Title = s.Title
		data.Artist = s.Artist
		data.Album = s.Album
		data.Device = s.DeviceName
		data.Progress = s.ProgressText
		data.Duration = s.DurationText
		data.Percent = s.ProgressPercent
		data.URL = s.ExternalURL
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	TrackID   string
	Title     string
	Artist    string
	Album     string
	Device    string
	Progress  string
	Duration  string
	Percent   int
	URL       string
	Error     string
}

// eventDescription returns a human-readable description of the event.
func eventDescription(e Event) string {
	switch e.Type {
	case EventTrackDetected:
		if e.Current != nil {
			return fmt.Sprintf("Now playing: %s - %s [%s]",
				e.Current.Artist,
				e.Current.Title,
				e.Current.DurationText)
		}
		return "Track detected"

	case EventTrackChange:
		if e.Current != nil {
			return fmt.Sprintf("Track changed: %s - %s",
				e.Current.Artist,
				e.Current.Title)
		}
		return "Track changed"

	case EventPause:
		if e.Current != nil {
			return fmt.Sprintf("Paused at %s", e.Current.ProgressText)
		}
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventDeviceChange:
		if e.Current != nil {
			return fmt.Sprintf("Device: %s", e.Current.DeviceName)
		}
		return "Device changed"

	case EventCleared:
		return "Nothing playing"

	case EventSessionExpired:
		return "Spotify session expired, run 'verse auth login' to reconnect"

	case EventError:
		if e.Err != nil {
			return fmt.Sprintf("Error: %v", e.Err)
		}
		return "Error"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackDetected:
		return "🎵"
	case EventTrackChange:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventDeviceChange:
		return "📱"
	case EventCleared:
		return "⏹️"
	case EventSessionExpired:
		return "🔒"
	case EventError:
		return "⚠️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackDetected:
		return "track_detected"
	case EventTrackChange:
		return "track_change"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventDeviceChange:
		return "device_change"
	case EventCleared:
		return "cleared"
	case EventSessionExpired:
		return "session_expired"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
