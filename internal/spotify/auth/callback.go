package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrStateMismatch is returned when the callback state does not match the
// login attempt.
var ErrStateMismatch = errors.New("state mismatch in oauth callback")

// CallbackResult contains the result of the OAuth callback.
type CallbackResult struct {
	Code  string
	State string
	Error string
}

// CallbackServer receives the OAuth redirect from Spotify on the loopback
// address named by the redirect URI.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	state    string
	result   chan CallbackResult
}

// NewCallbackServer listens on the host and port of redirectURI and serves
// its path. A port of 0 picks a free port. The state is checked on every
// callback.
func NewCallbackServer(redirectURI, state string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}

	host := u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := u.Port()
	if port == "" {
		port = "0"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", net.JoinHostPort(host, port), err)
	}

	cs := &CallbackServer{
		listener: listener,
		state:    state,
		result:   make(chan CallbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, cs.handleCallback)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return cs, nil
}

// Start begins serving HTTP requests in the background.
func (cs *CallbackServer) Start() {
	go func() {
		_ = cs.server.Serve(cs.listener)
	}()
}

// Wait blocks until a callback is received or ctx is done. It returns the
// authorization code, or an error when Spotify reported one or the state
// does not match.
func (cs *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case result := <-cs.result:
		if result.Error != "" {
			return "", fmt.Errorf("authorization denied: %s", result.Error)
		}
		if result.State != cs.state {
			return "", ErrStateMismatch
		}
		if result.Code == "" {
			return "", errors.New("callback did not include an authorization code")
		}
		return result.Code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown gracefully shuts down the server.
func (cs *CallbackServer) Shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (cs *CallbackServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result := CallbackResult{
		Code:  query.Get("code"),
		State: query.Get("state"),
		Error: query.Get("error"),
	}

	// Duplicate callbacks are dropped
	select {
	case cs.result <- result:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch {
	case result.Error != "":
		w.WriteHeader(http.StatusBadRequest)
		writePage(w, "Authentication Failed", "Spotify said: "+result.Error)
	case result.State != cs.state:
		w.WriteHeader(http.StatusBadRequest)
		writePage(w, "Authentication Failed", "The login attempt did not match. Run verse auth login again.")
	default:
		w.WriteHeader(http.StatusOK)
		writePage(w, "Authentication Successful", "verse is connected. You can close this window and return to the terminal.")
	}
}

func writePage(w http.ResponseWriter, title, message string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%[1]s</title></head>
<body>
<h1>%[1]s</h1>
<p>%[2]s</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
