package client

// User represents a Spotify user profile.
type User struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Email        string       `json:"email"`
	Country      string       `json:"country"`
	Product      string       `json:"product"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// IsPremium reports whether the account can control playback.
func (u *User) IsPremium() bool {
	return u.Product == "premium"
}

// ExternalURLs contains external URLs for a resource.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Device represents a Spotify playback device.
type Device struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	IsActive         bool   `json:"is_active"`
	IsRestricted     bool   `json:"is_restricted"`
	IsPrivateSession bool   `json:"is_private_session"`
	VolumePercent    *int   `json:"volume_percent"` // Nullable
}

// DevicesResponse is the response from the devices endpoint.
type DevicesResponse struct {
	Devices []Device `json:"devices"`
}

// CurrentlyPlaying is the currently-playing payload. Every field may be
// missing, so pointers mark what is optional.
type CurrentlyPlaying struct {
	Timestamp            int64   `json:"timestamp"`
	ProgressMS           *int    `json:"progress_ms"`
	IsPlaying            bool    `json:"is_playing"`
	Item                 *Track  `json:"item"`
	Device               *Device `json:"device"`
	CurrentlyPlayingType string  `json:"currently_playing_type"` // track, episode, ad, unknown

	ExternalURLs *ExternalURLs `json:"external_urls"`
}

// Track represents a Spotify track.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	DurationMS   int          `json:"duration_ms"`
	Artists      []Artist     `json:"artists"`
	Album        *Album       `json:"album"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// TransferRequest is the body of a playback transfer.
type TransferRequest struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}
