package player

import (
	"context"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/spotify/client"
)

// Player adapts the Spotify client to core.Provider.
type Player struct {
	client *client.Client
}

// New creates a new Spotify provider.
func New(c *client.Client) *Player {
	return &Player{client: c}
}

// CurrentlyPlaying returns the raw currently-playing payload, or nil when
// nothing is playing.
func (p *Player) CurrentlyPlaying(ctx context.Context) ([]byte, error) {
	return p.client.GetCurrentlyPlaying(ctx)
}

// Devices returns the user's available playback devices.
func (p *Player) Devices(ctx context.Context) ([]core.Device, error) {
	devices, err := p.client.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]core.Device, 0, len(devices))
	for _, d := range devices {
		// Devices without an ID cannot be targeted
		if d.ID == "" {
			continue
		}
		result = append(result, convertDevice(d))
	}
	return result, nil
}

// TransferPlayback transfers playback to a different device.
func (p *Player) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	return p.client.TransferPlayback(ctx, deviceID, play)
}

// convertDevice converts a Spotify device to a core device.
func convertDevice(d client.Device) core.Device {
	dev := core.Device{
		ID:           d.ID,
		Name:         d.Name,
		Kind:         d.Type,
		IsActive:     d.IsActive,
		IsRestricted: d.IsRestricted,
	}
	if dev.Name == "" {
		dev.Name = core.UnknownDeviceName
	}
	if dev.Kind == "" {
		dev.Kind = core.UnknownDeviceKind
	}
	return dev
}

// Ensure Player implements core.Provider
var _ core.Provider = (*Player)(nil)
