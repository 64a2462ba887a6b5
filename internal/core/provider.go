package core

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider is the external playback service.
type Provider interface {
	// CurrentlyPlaying returns the raw playback payload, or nil when nothing
	// is playing.
	CurrentlyPlaying(ctx context.Context) ([]byte, error)

	// Devices lists the user's available output devices.
	Devices(ctx context.Context) ([]Device, error)

	// TransferPlayback moves playback to the given device.
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
}

// CredentialStore persists the provider bearer credential.
type CredentialStore interface {
	// Get returns the stored token, or nil when none is stored.
	Get() (*oauth2.Token, error)
	Set(token *oauth2.Token) error
	Clear() error
}

// HistorySink persists detected tracks. Append de-duplicates repeat
// detections of the same track within the dedup window.
type HistorySink interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, scope string, limit int) ([]HistoryEntry, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context, scope string) error
}
