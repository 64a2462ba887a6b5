package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/history"
	"github.com/tessro/verse/internal/monitor"
)

// DefaultHistoryLimit is how many entries GET /api/history returns by default.
const DefaultHistoryLimit = 50

type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

type refreshResponse struct {
	Outcome string        `json:"outcome"`
	State   monitor.State `json:"state"`
}

type pollingRequest struct {
	IntervalMs int `json:"interval_ms"`
}

type transferRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type historyResponse struct {
	Entries []core.HistoryEntry `json:"entries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.State())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.monitor.FetchOnce(r.Context(), false)
	if err != nil && !errors.Is(err, verrors.ErrNothingPlaying) {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Outcome: outcome.String(),
		State:   s.monitor.State(),
	})
}

func (s *Server) handleStartPolling(w http.ResponseWriter, r *http.Request) {
	var req pollingRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, badRequest("invalid request body"))
			return
		}
	}
	if req.IntervalMs < 0 {
		s.writeError(w, r, badRequest("interval_ms must not be negative"))
		return
	}

	s.monitor.StartPolling(s.baseCtx, time.Duration(req.IntervalMs)*time.Millisecond)
	writeJSON(w, http.StatusAccepted, s.monitor.State())
}

func (s *Server) handleStopPolling(w http.ResponseWriter, r *http.Request) {
	s.monitor.StopPolling()
	writeJSON(w, http.StatusOK, s.monitor.State())
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, badRequest("invalid request body"))
			return
		}
	}

	var selector monitor.DeviceSelector
	switch {
	case req.DeviceID != "":
		selector = monitor.DeviceByID(req.DeviceID)
	case req.DeviceName != "":
		selector = monitor.DeviceByName(req.DeviceName)
	}

	device, err := s.monitor.TransferPlayback(r.Context(), selector)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, historyResponse{Entries: []core.HistoryEntry{}})
		return
	}

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), s.scope, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, r, history.ErrNotFound)
		return
	}
	if err := s.history.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Clear(r.Context(), s.scope); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, verrors.ErrNotAuthenticated), errors.Is(err, verrors.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, verrors.ErrPremiumRequired):
		return http.StatusForbidden
	case errors.Is(err, verrors.ErrNoMatchingDevice), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, verrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, verrors.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:      err.Error(),
		Suggestion: verrors.GetSuggestion(err),
		RequestID:  RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
