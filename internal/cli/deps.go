package cli

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/monitor"
	"github.com/tessro/verse/internal/spotify/auth"
	"github.com/tessro/verse/internal/spotify/client"
	"github.com/tessro/verse/internal/spotify/player"
	"github.com/tessro/verse/internal/store"
)

const requestTimeout = 30 * time.Second

func requireClientID() error {
	if cfg.Spotify.ClientID == "" {
		return verrors.WithSuggestion(
			fmt.Errorf("%w: spotify.client_id is not set", verrors.ErrInvalidConfig),
			"Set spotify.client_id in ~/.verserc or via VERSE_SPOTIFY_CLIENT_ID")
	}
	return nil
}

func newTokenStorage() (*auth.TokenStorage, error) {
	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}
	return storage, nil
}

func oauthConfig() *oauth2.Config {
	return auth.NewConfig(cfg.Spotify.ClientID, cfg.Spotify.RedirectURI)
}

func newClient(creds core.CredentialStore) *client.Client {
	return client.New(creds,
		client.WithOAuth(oauthConfig()),
		client.WithRateLimit(cfg.Spotify.RateLimit),
		client.WithLogger(logging.With(logger, "component", "spotify")),
	)
}

// spotifyStack is everything a command needs to talk to Spotify.
type spotifyStack struct {
	storage  *auth.TokenStorage
	client   *client.Client
	provider *player.Player
}

func newSpotifyStack() (*spotifyStack, error) {
	if err := requireClientID(); err != nil {
		return nil, err
	}
	storage, err := newTokenStorage()
	if err != nil {
		return nil, err
	}
	c := newClient(storage)
	return &spotifyStack{
		storage:  storage,
		client:   c,
		provider: player.New(c),
	}, nil
}

func openHistory() (*store.Store, error) {
	s, err := store.Open(cfg.History.Path, store.Options{MaxEntries: cfg.History.MaxEntries})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return s, nil
}

// newMonitor builds a monitor from config. sink may be nil.
func newMonitor(s *spotifyStack, sink core.HistorySink, opts ...monitor.Option) *monitor.Monitor {
	base := []monitor.Option{
		monitor.WithLogger(logging.With(logger, "component", "monitor")),
		monitor.WithScope(cfg.History.Scope),
		monitor.WithInterval(time.Duration(cfg.Monitor.Interval) * time.Millisecond),
		monitor.WithTransferDelay(time.Duration(cfg.Monitor.TransferDelay) * time.Millisecond),
		monitor.WithAutoStart(cfg.Monitor.AutoStart),
		monitor.WithBackgroundDetection(cfg.Monitor.BackgroundDetection),
	}
	return monitor.New(s.provider, s.storage, sink, append(base, opts...)...)
}
