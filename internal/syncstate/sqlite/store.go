package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/notewrap/internal/syncstate"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS sync_cursors (
  notebook_id  TEXT PRIMARY KEY,
  timestamp    INTEGER NOT NULL,
  update_count INTEGER NOT NULL,
  synced_at    INTEGER NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("migrate sync_cursors: %w", err)
	}
	return nil
}

func (s *Store) Cursor(ctx context.Context, notebookID string) (syncstate.Cursor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT timestamp, update_count, synced_at FROM sync_cursors WHERE notebook_id = ?`, notebookID)

	c := syncstate.Cursor{NotebookID: notebookID}
	var syncedAt int64
	err := row.Scan(&c.Timestamp, &c.UpdateCount, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return syncstate.Cursor{}, fmt.Errorf("read cursor %s: %w", notebookID, err)
	}
	c.SyncedAt = time.UnixMilli(syncedAt).UTC()
	return c, nil
}

func (s *Store) SaveCursor(ctx context.Context, c syncstate.Cursor) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sync_cursors (notebook_id, timestamp, update_count, synced_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(notebook_id) DO UPDATE SET
  timestamp    = excluded.timestamp,
  update_count = excluded.update_count,
  synced_at    = excluded.synced_at
`, c.NotebookID, c.Timestamp, c.UpdateCount, c.SyncedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save cursor %s: %w", c.NotebookID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]syncstate.Cursor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT notebook_id, timestamp, update_count, synced_at FROM sync_cursors ORDER BY notebook_id`)
	if err != nil {
		return nil, fmt.Errorf("list cursors: %w", err)
	}
	defer rows.Close()

	var out []syncstate.Cursor
	for rows.Next() {
		var c syncstate.Cursor
		var syncedAt int64
		if err := rows.Scan(&c.NotebookID, &c.Timestamp, &c.UpdateCount, &syncedAt); err != nil {
			return nil, err
		}
		c.SyncedAt = time.UnixMilli(syncedAt).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
