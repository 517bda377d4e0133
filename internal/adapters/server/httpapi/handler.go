// Package httpapi provides the read-only JSON HTTP adapter for the board.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanschultz/stack/internal/adapters/server/common"
)

// Logger is the subset of charmbracelet/log used by the handler.
type Logger interface {
	Error(msg any, keyvals ...any)
}

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	board  common.BoardReader
	logger Logger
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over a board reader.
func NewHandler(board common.BoardReader, logger Logger) *Handler {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Handler{
		board:  board,
		logger: logger,
	}
}

// ServeHTTP resolves the route first so unknown paths get 404 before any method check.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve := h.route(normalizePath(r.URL.Path))
	if serve == nil {
		writeNotFound(w)
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if !h.ready(w) {
		return
	}
	serve(w, r)
}

// route returns the GET handler for path, or nil.
func (h *Handler) route(path string) http.HandlerFunc {
	switch path {
	case "board":
		return h.handleBoard
	case "epics":
		return h.handleListEpics
	}
	raw, ok := strings.CutPrefix(path, "stories/")
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return nil
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleGetStory(w, r, raw)
	}
}

// handleBoard serves GET `/board`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	var epicID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("epic_id")); raw != "" {
		id, ok := parseID(w, "epic_id", raw)
		if !ok {
			return
		}
		epicID = &id
	}
	board, err := h.board.Board(r.Context(), epicID)
	if err != nil {
		h.writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleListEpics serves GET `/epics`.
func (h *Handler) handleListEpics(w http.ResponseWriter, r *http.Request) {
	epics, err := h.board.ListEpics(r.Context())
	if err != nil {
		h.writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"epics": epics,
	})
}

// handleGetStory serves GET `/stories/{id}`.
func (h *Handler) handleGetStory(w http.ResponseWriter, r *http.Request, raw string) {
	id, ok := parseID(w, "story id", raw)
	if !ok {
		return
	}
	detail, err := h.board.GetStory(r.Context(), id)
	if err != nil {
		h.writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ready writes a 503 when no board reader is configured.
func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.board != nil {
		return true
	}
	writeJSONError(w, http.StatusServiceUnavailable, APIError{
		Code:    "service_unavailable",
		Message: "board service is not configured",
	})
	return false
}

// parseID parses one positive integer id or writes a 400.
func parseID(w http.ResponseWriter, field, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: fmt.Sprintf("invalid %s %q", field, raw),
			Hint:    "ids are positive integers",
		})
		return 0, false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func (h *Handler) writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		h.logger.Error("api request failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeNotFound writes the structured unknown-endpoint response.
func writeNotFound(w http.ResponseWriter) {
	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

type nopLogger struct{}

func (nopLogger) Error(any, ...any) {}
