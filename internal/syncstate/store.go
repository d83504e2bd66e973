// Package syncstate remembers, per notebook, how far a sync has progressed.
package syncstate

import (
	"context"
	"time"
)

// Cursor records the newest note update seen for a notebook and the
// account update count at the time of that sync.
type Cursor struct {
	NotebookID  string    `json:"notebook_id"`
	Timestamp   int64     `json:"timestamp"` // Unix ms of the newest note seen
	UpdateCount int32     `json:"update_count"`
	SyncedAt    time.Time `json:"synced_at"`
}

// Store persists cursors. Cursor returns a zero cursor (with NotebookID
// set) for notebooks that were never synced.
type Store interface {
	Cursor(ctx context.Context, notebookID string) (Cursor, error)
	SaveCursor(ctx context.Context, c Cursor) error
	List(ctx context.Context) ([]Cursor, error)
	Close() error
}
