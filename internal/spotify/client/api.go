package client

import (
	"context"
	"net/http"
)

// GetCurrentUser returns the current user's profile.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.getJSON(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDevices returns the user's available playback devices.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var resp DevicesResponse
	if _, err := c.getJSON(ctx, "/me/player/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// GetCurrentlyPlaying returns the raw currently-playing payload. It returns
// nil, nil when Spotify answers 204 No Content.
func (c *Client) GetCurrentlyPlaying(ctx context.Context) ([]byte, error) {
	path := BuildURL("/me/player/currently-playing", map[string]string{"additional_types": "track"})
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// TransferPlayback transfers playback to a different device.
func (c *Client) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	body := TransferRequest{
		DeviceIDs: []string{deviceID},
		Play:      play,
	}
	_, _, err := c.do(ctx, http.MethodPut, "/me/player", body)
	return err
}
