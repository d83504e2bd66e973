package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/notewrap/internal/config"
	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/notestore"
	"github.com/dgallion1/notewrap/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NoteService is the note-level API the handlers are written against.
type NoteService interface {
	Get(ctx context.Context, id string, mode enml.Mode) (*notes.Note, error)
	Create(ctx context.Context, d notes.Draft) (*notestore.Note, error)
	Update(ctx context.Context, id string, d notes.Draft) (*notestore.Note, error)
	Notebooks(ctx context.Context) ([]notestore.Notebook, error)
	Notes(ctx context.Context, notebookID string, since int64, mode enml.Mode) ([]notes.Note, int64, error)
	Version(ctx context.Context) (int32, error)
}

// Server is the HTTP API server for notewrap.
type Server struct {
	router       chi.Router
	notes        NoteService
	orchestrator *pipeline.Orchestrator
	stats        *notestore.CallStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(svc NoteService, orch *pipeline.Orchestrator, stats *notestore.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		notes:        svc,
		orchestrator: orch,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/normalize", s.handleNormalize)

		r.Get("/api/version", s.handleVersion)
		r.Get("/api/notebooks", s.handleListNotebooks)
		r.Get("/api/notebooks/{notebookID}/notes", s.handleListNotes)
		r.Get("/api/notes/{noteID}", s.handleGetNote)
		r.Post("/api/notes", s.handleCreateNote)
		r.Put("/api/notes/{noteID}", s.handleUpdateNote)

		r.Post("/api/sync/{notebookID}", s.handleSync)
		r.Get("/api/sync/{jobID}/status", s.handleSyncStatus)
		r.Get("/api/sync/cursors", s.handleListCursors)

		r.Get("/api/stats/notestore", s.handleNoteStoreStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
