package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dgallion1/notewrap/internal/syncstate"
)

type Store struct {
	mu      sync.Mutex
	cursors map[string]syncstate.Cursor
}

func New() *Store {
	return &Store{cursors: make(map[string]syncstate.Cursor)}
}

func (s *Store) Cursor(_ context.Context, notebookID string) (syncstate.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cursors[notebookID]; ok {
		return c, nil
	}
	return syncstate.Cursor{NotebookID: notebookID}, nil
}

func (s *Store) SaveCursor(_ context.Context, c syncstate.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[c.NotebookID] = c
	return nil
}

// List returns cursors ordered by notebook ID.
func (s *Store) List(_ context.Context) ([]syncstate.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]syncstate.Cursor, 0, len(s.cursors))
	for _, c := range s.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotebookID < out[j].NotebookID })
	return out, nil
}

func (s *Store) Close() error { return nil }
