package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/notewrap/internal/enml"
)

type normalizeRequest struct {
	Content string            `json:"content"`
	Mode    string            `json:"mode"`
	Media   map[string]string `json:"media,omitempty"` // hash -> url
}

// handleNormalize renders posted ENML without touching the note store.
// The request's media map stands in for resource lookups.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentBytes+64*1024)

	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("content exceeds max size (%d bytes)", s.cfg.MaxContentBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(req.Content)) > s.cfg.MaxContentBytes {
		jsonError(w, fmt.Sprintf("content exceeds max size (%d bytes)", s.cfg.MaxContentBytes), http.StatusRequestEntityTooLarge)
		return
	}

	mode, err := s.modeOrDefault(req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := enml.Normalize(req.Content, mode, mapResolver(req.Media))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   mode,
		"output": out,
		"media":  enml.MediaRefs(req.Content),
	})
}

// modeOrDefault parses a mode parameter. Absent means the configured default.
func (s *Server) modeOrDefault(v string) (enml.Mode, error) {
	if v == "" {
		return s.cfg.DefaultMode, nil
	}
	return enml.ParseMode(v)
}

func mapResolver(media map[string]string) enml.MediaResolver {
	if len(media) == 0 {
		return nil
	}
	return func(hash string) (string, bool) {
		url, ok := media[hash]
		return url, ok && url != ""
	}
}
