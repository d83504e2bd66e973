package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/notewrap/internal/api"
	"github.com/dgallion1/notewrap/internal/config"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/notestore"
	"github.com/dgallion1/notewrap/internal/pipeline"
	"github.com/dgallion1/notewrap/internal/syncstate"
	"github.com/dgallion1/notewrap/internal/syncstate/memory"
	"github.com/dgallion1/notewrap/internal/syncstate/sqlite"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the note store.
	stats := notestore.NewCallStats(cfg.StatsWindow)
	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.NoteStoreTimeout)
	store, err := notestore.Dial(dialCtx, notestore.Options{
		Domain:       cfg.NoteStoreDomain,
		NoteStoreURL: cfg.NoteStoreURL,
		Token:        cfg.NoteStoreToken,
		Timeout:      cfg.NoteStoreTimeout,
		Stats:        stats,
	})
	dialCancel()
	if err != nil {
		log.Error("note store unavailable", "error", err)
		os.Exit(1)
	}

	cursors, err := openCursors(cfg.SyncDBPath)
	if err != nil {
		log.Error("sync store unavailable", "path", cfg.SyncDBPath, "error", err)
		os.Exit(1)
	}

	svc := notes.NewService(store, log, notes.Options{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	})

	// Initialize sync pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Config{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, svc, cursors, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(svc, orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		store.Close()
		cursors.Close()
	}()

	log.Info("starting notewrap", "port", cfg.Port, "default_mode", cfg.DefaultMode, "sync_db", cfg.SyncDBPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openCursors uses sqlite when a path is configured and memory otherwise.
func openCursors(path string) (syncstate.Store, error) {
	if path == "" {
		return memory.New(), nil
	}
	return sqlite.Open(path)
}
