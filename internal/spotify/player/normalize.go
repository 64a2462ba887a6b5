package player

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/spotify/client"
)

// Normalize converts a currently-playing payload into a snapshot. It never
// fails: malformed JSON, a missing item or an item without an ID all yield
// nil.
func Normalize(payload []byte, observedAt time.Time) *core.Snapshot {
	if len(payload) == 0 {
		return nil
	}

	var cp client.CurrentlyPlaying
	if err := json.Unmarshal(payload, &cp); err != nil {
		return nil
	}
	if cp.Item == nil || cp.Item.ID == "" {
		return nil
	}

	item := cp.Item

	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	progress := 0
	if cp.ProgressMS != nil {
		progress = max(*cp.ProgressMS, 0)
	}
	duration := max(item.DurationMS, 0)

	snap := &core.Snapshot{
		TrackID:     item.ID,
		Title:       item.Name,
		Artists:     artists,
		Artist:      strings.Join(artists, ", "),
		DurationMs:  duration,
		ProgressMs:  progress,
		IsPlaying:   cp.IsPlaying,
		DeviceName:  core.UnknownDeviceName,
		DeviceKind:  core.UnknownDeviceKind,
		ExternalURL: item.ExternalURLs.Spotify,
		ObservedAt:  observedAt,

		ProgressText:    core.FormatClock(progress),
		DurationText:    core.FormatClock(duration),
		ProgressPercent: core.ProgressPercent(progress, duration),
	}

	if item.Album != nil {
		snap.Album = item.Album.Name
	}
	if snap.ExternalURL == "" && cp.ExternalURLs != nil {
		snap.ExternalURL = cp.ExternalURLs.Spotify
	}
	if cp.Device != nil {
		if cp.Device.Name != "" {
			snap.DeviceName = cp.Device.Name
		}
		if cp.Device.Type != "" {
			snap.DeviceKind = cp.Device.Type
		}
	}

	return snap
}
