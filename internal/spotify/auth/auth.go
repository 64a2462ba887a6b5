package auth

import (
	"golang.org/x/oauth2"
)

const (
	// SpotifyAuthURL is the Spotify authorization endpoint.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"

	// SpotifyTokenURL is the Spotify token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRedirectURI is the default callback URI for the local server.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"
)

// DefaultScopes are the Spotify scopes verse needs to read and hand over
// playback.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-private",
	"user-read-email",
}

// Endpoint is the Spotify OAuth endpoint. PKCE clients have no secret, so the
// client ID travels in the form body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   SpotifyAuthURL,
	TokenURL:  SpotifyTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// NewConfig creates an OAuth configuration for the given client. An empty
// redirectURI uses DefaultRedirectURI.
func NewConfig(clientID, redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	return &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    Endpoint,
		RedirectURL: redirectURI,
		Scopes:      DefaultScopes,
	}
}

// AuthURL builds the authorization URL carrying the PKCE challenge and state.
func AuthURL(conf *oauth2.Config, pkce *PKCE) string {
	return conf.AuthCodeURL(pkce.State, oauth2.S256ChallengeOption(pkce.Verifier))
}
