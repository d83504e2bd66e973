package api

import (
	"fmt"
	"net/http"

	"github.com/dgallion1/notewrap/internal/pipeline"
	"github.com/dgallion1/notewrap/internal/syncstate"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "sync unavailable", http.StatusServiceUnavailable)
		return
	}
	mode, err := s.modeOrDefault(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job := pipeline.NewJob(chi.URLParam(r, "notebookID"), mode)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      job.ID,
		"notebook_id": job.NotebookID,
		"status":      pipeline.StatusQueued,
		"poll_url":    fmt.Sprintf("/api/sync/%s/status", job.ID),
	})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "sync unavailable", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleListCursors(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "sync unavailable", http.StatusServiceUnavailable)
		return
	}
	cursors, err := s.orchestrator.Cursors().List(r.Context())
	if err != nil {
		jsonError(w, "failed to list cursors: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if cursors == nil {
		cursors = []syncstate.Cursor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cursors":     cursors,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
