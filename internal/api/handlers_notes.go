package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/render"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	count, err := s.notes.Version(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"update_count": count})
}

func (s *Server) handleListNotebooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.notes.Notebooks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notebooks": books})
}

// handleListNotes lists notes updated after ?since= (Unix ms). The
// returned timestamp is the cursor for the next call.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")

	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			jsonError(w, "since must be a non-negative unix millisecond timestamp", http.StatusBadRequest)
			return
		}
		since = n
	}
	mode, err := s.modeOrDefault(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	found, cursor, err := s.notes.Notes(r.Context(), notebookID, since, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if found == nil {
		found = []notes.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes":     found,
		"timestamp": cursor,
	})
}

// handleGetNote returns one note. ?format=markdown converts basic output
// to Markdown; ?format=pdf returns the stripped text as a PDF document.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	format := strings.ToLower(r.URL.Query().Get("format"))

	mode, err := s.modeOrDefault(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch format {
	case "", "json":
	case "markdown", "md":
		mode = enml.ModeBasic
	case "pdf":
		mode = enml.ModeStrip
	default:
		jsonError(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}

	note, err := s.notes.Get(r.Context(), noteID, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format {
	case "markdown", "md":
		md, err := render.Markdown(note.Text)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
	case "pdf":
		data, err := render.PDF(note.Title, note.Text)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", note.ID+".pdf"))
		w.Write(data)
	default:
		writeJSON(w, http.StatusOK, note)
	}
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	created, err := s.notes.Create(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          created.GUID,
		"title":       created.Title,
		"notebook_id": created.NotebookGUID,
		"usn":         created.UpdateSequenceNum,
	})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	updated, err := s.notes.Update(r.Context(), chi.URLParam(r, "noteID"), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    updated.GUID,
		"title": updated.Title,
		"usn":   updated.UpdateSequenceNum,
	})
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (notes.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentBytes+64*1024)
	var d notes.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return d, false
	}
	if int64(len(d.Content)) > s.cfg.MaxContentBytes {
		jsonError(w, fmt.Sprintf("content exceeds max size (%d bytes)", s.cfg.MaxContentBytes), http.StatusRequestEntityTooLarge)
		return d, false
	}
	return d, true
}
