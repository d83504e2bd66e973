package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/notewrap/internal/compose"
	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/notestore"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeError maps service errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}

func statusFor(err error) int {
	var retryErr *notestore.RetryableError
	switch {
	case errors.Is(err, enml.ErrInvalidMode),
		errors.Is(err, notes.ErrInvalidNote),
		errors.Is(err, compose.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, notestore.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &retryErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
