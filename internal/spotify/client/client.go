package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/spotify/auth"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	// Retry configuration for transient errors
	defaultMaxRetries    = 3
	defaultBaseRetryWait = 500 * time.Millisecond

	// Longest Retry-After honored before giving up on a 429.
	maxRetryAfter = 5 * time.Second
)

// Client is a Spotify Web API client. The access token is read from the
// credential store on every request so a cleared store takes effect
// immediately.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      core.CredentialStore
	oauth      *oauth2.Config
	limiter    *rate.Limiter
	logger     *log.Logger

	maxRetries    int
	baseRetryWait time.Duration

	refreshMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOAuth enables refreshing expired tokens with conf.
func WithOAuth(conf *oauth2.Config) Option {
	return func(c *Client) { c.oauth = conf }
}

// WithRetries sets how often transient failures are retried and the base
// backoff between attempts.
func WithRetries(n int, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.baseRetryWait = base
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a new Spotify client backed by store.
func New(store core.CredentialStore, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       BaseURL,
		store:         store,
		limiter:       rate.NewLimiter(rate.Inf, 0),
		logger:        logging.Discard(),
		maxRetries:    defaultMaxRetries,
		baseRetryWait: defaultBaseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// accessToken returns the stored access token, refreshing it first when it
// has expired and a refresh token is available.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	token, err := c.store.Get()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if token == nil || token.AccessToken == "" {
		return "", verrors.ErrNotAuthenticated
	}

	if c.oauth == nil || token.RefreshToken == "" || !auth.IsExpired(token) {
		return token.AccessToken, nil
	}

	c.logger.Debug("refreshing access token", "expiry", token.Expiry)
	fresh, err := auth.Refresh(ctx, c.oauth, token)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: %w", verrors.ErrSessionExpired, err)
		}
		return "", verrors.Transient(err)
	}
	if err := c.store.Set(fresh); err != nil {
		c.logger.Warn("failed to persist refreshed token", "err", err)
	}
	return fresh.AccessToken, nil
}

// do performs a request and returns the status and body of a successful
// response. Network failures, 5xx and 429 responses are retried.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	c.logger.Debug("spotify request", "method", method, "url", fullURL)

	var lastErr error
	var wait time.Duration
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if wait == 0 {
				wait = c.baseRetryWait * time.Duration(1<<(attempt-1))
			}
			c.logger.Debug("retrying", "attempt", attempt, "max", c.maxRetries, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(wait):
			}
			wait = 0
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Debug("network error", "err", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.logger.Debug("spotify response", "status", resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = newAPIError(resp.StatusCode, respBody)
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			if retryAfter > maxRetryAfter {
				return 0, nil, lastErr
			}
			wait = retryAfter
			continue
		case resp.StatusCode >= 500:
			lastErr = newAPIError(resp.StatusCode, respBody)
			c.logger.Debug("server error, will retry", "err", lastErr)
			continue
		case resp.StatusCode >= 400:
			c.logger.Debug("spotify error body", "body", string(respBody))
			return resp.StatusCode, nil, newAPIError(resp.StatusCode, respBody)
		}

		return resp.StatusCode, respBody, nil
	}

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
		return 0, nil, lastErr
	}
	return 0, nil, verrors.Transient(fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr))
}

// getJSON performs a GET and decodes the body into result. It reports
// false when the response carried no content.
func (c *Client) getJSON(ctx context.Context, path string, result any) (bool, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}

// APIError represents a Spotify API error response.
type APIError struct {
	Status  int
	Message string
}

type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		e.Message = parsed.Error.Message
	} else {
		e.Message = http.StatusText(status)
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the shared error kinds.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return verrors.ErrSessionExpired
	case e.Status == http.StatusForbidden:
		return verrors.ErrPremiumRequired
	case e.Status == http.StatusTooManyRequests:
		return verrors.ErrRateLimited
	case e.Status >= 500:
		return verrors.ErrTransient
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
