package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/syncstate"
)

// NoteLister is what a worker needs from the note service.
type NoteLister interface {
	Notes(ctx context.Context, notebookID string, since int64, mode enml.Mode) ([]notes.Note, int64, error)
	Version(ctx context.Context) (int32, error)
}

// Worker processes a single notebook sync job.
type Worker struct {
	lister  NoteLister
	cursors syncstate.Store
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

// NewWorker returns a worker that retries note-store calls with Backoff.
func NewWorker(lister NoteLister, cursors syncstate.Store, log *slog.Logger) *Worker {
	return &Worker{
		lister:  lister,
		cursors: cursors,
		log:     log,
		backoff: Backoff,
	}
}

// Process pulls the notes changed since the notebook's cursor and then
// advances the cursor.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "notebook", job.NotebookID)

	job.SetStatus(StatusChecking, "reading cursor")
	cur, err := w.cursors.Cursor(ctx, job.NotebookID)
	if err != nil {
		w.fail(log, job, "reading cursor", err)
		return
	}

	version, err := withRetry(ctx, log, "version", w.backoff, func() (int32, error) {
		return w.lister.Version(ctx)
	})
	if err != nil {
		w.fail(log, job, "checking version", err)
		return
	}
	if cur.UpdateCount != 0 && version == cur.UpdateCount {
		log.Info("account unchanged, skipping", "update_count", version)
		job.SetResult(cur.Timestamp, cur.Timestamp, nil)
		job.SetStatus(StatusSkipped, "unchanged")
		return
	}

	job.SetStatus(StatusListing, "listing notes")
	type listing struct {
		notes  []notes.Note
		cursor int64
	}
	res, err := withRetry(ctx, log, "notes", w.backoff, func() (listing, error) {
		found, cursor, err := w.lister.Notes(ctx, job.NotebookID, cur.Timestamp, job.Mode)
		return listing{notes: found, cursor: cursor}, err
	})
	if err != nil {
		w.fail(log, job, "listing notes", err)
		return
	}
	job.SetResult(cur.Timestamp, res.cursor, res.notes)

	next := syncstate.Cursor{
		NotebookID:  job.NotebookID,
		Timestamp:   res.cursor,
		UpdateCount: version,
		SyncedAt:    time.Now().UTC(),
	}
	if err := w.cursors.SaveCursor(ctx, next); err != nil {
		w.fail(log, job, "saving cursor", err)
		return
	}

	log.Info("sync complete", "new_notes", len(res.notes), "cursor", res.cursor)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("sync failed", "phase", phase, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	job.SetStatus(StatusFailed, phase)
}
