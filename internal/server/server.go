// Package server exposes the monitor and play history over a local JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/monitor"
)

// Monitor is the part of *monitor.Monitor the server drives.
type Monitor interface {
	State() monitor.State
	FetchOnce(ctx context.Context, background bool) (monitor.Outcome, error)
	StartPolling(ctx context.Context, interval time.Duration)
	StopPolling()
	TransferPlayback(ctx context.Context, selector monitor.DeviceSelector) (core.Device, error)
}

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Server serves the JSON API.
type Server struct {
	monitor Monitor
	history core.HistorySink
	scope   string
	logger  *log.Logger
	baseCtx context.Context
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithScope sets the history scope served.
func WithScope(scope string) Option {
	return func(s *Server) { s.scope = scope }
}

// WithBaseContext sets the context polling started over HTTP runs under.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.baseCtx = ctx }
}

// New creates a server. history may be nil, which disables the history
// endpoints.
func New(m Monitor, history core.HistorySink, opts ...Option) *Server {
	s := &Server{
		monitor: m,
		history: history,
		scope:   core.DefaultScope,
		logger:  logging.Discard(),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/now-playing", s.handleNowPlaying)
		r.Post("/now-playing/refresh", s.handleRefresh)

		r.Post("/polling", s.handleStartPolling)
		r.Delete("/polling", s.handleStopPolling)

		r.Post("/transfer", s.handleTransfer)

		r.Get("/history", s.handleListHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Delete("/history/{id}", s.handleRemoveHistory)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type ctxKey struct{}

// requestID tags each request with an ID, reusing one sent by the client.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the request ID stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
