package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer treats tokens as expired slightly before the provider does.
const expiryBuffer = 60 * time.Second

// IsExpired returns true if the token has expired or will expire within the
// buffer. Tokens without an expiry never expire.
func IsExpired(token *oauth2.Token) bool {
	if token == nil {
		return true
	}
	if token.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(expiryBuffer).After(token.Expiry)
}

// ExchangeCode exchanges an authorization code for tokens.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code, codeVerifier string) (*oauth2.Token, error) {
	token, err := conf.Exchange(withHTTPClient(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

// Refresh returns a fresh access token for token. The refresh token is
// preserved when the provider does not rotate it.
func Refresh(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}

	// Force a refresh even if the local expiry says otherwise.
	stale := *token
	stale.Expiry = time.Unix(1, 0)

	fresh, err := conf.TokenSource(withHTTPClient(ctx), &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}
	return fresh, nil
}

// withHTTPClient installs a client with a timeout unless the caller already
// supplied one.
func withHTTPClient(ctx context.Context) context.Context {
	if _, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})
}
