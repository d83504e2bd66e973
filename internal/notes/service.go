// Package notes reads, lists and creates notes through a note store and
// renders their content with the enml normalizer.
package notes

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/notewrap/internal/compose"
	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notestore"
)

// ErrInvalidNote is returned when a note to be written fails validation.
var ErrInvalidNote = errors.New("invalid note")

const maxTitleLen = 255

// Store is the subset of the note-store client the service needs.
type Store interface {
	GetNote(ctx context.Context, guid string) (*notestore.Note, error)
	GetNoteContent(ctx context.Context, guid string) (string, error)
	CreateNote(ctx context.Context, note notestore.Note) (*notestore.Note, error)
	UpdateNote(ctx context.Context, note notestore.Note) (*notestore.Note, error)
	ListNotebooks(ctx context.Context) ([]notestore.Notebook, error)
	FindNotesMetadata(ctx context.Context, filter notestore.NoteFilter, offset, maxNotes int32) (*notestore.NotesMetadataList, error)
	GetResourceByHash(ctx context.Context, noteGUID string, hash []byte) (*notestore.Resource, error)
	GetSyncState(ctx context.Context) (*notestore.SyncState, error)
}

// Note is a note with its content rendered in one output mode.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	NotebookID string    `json:"notebook_id,omitempty"`
	Mode       enml.Mode `json:"mode"`
	Text       string    `json:"text"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// Draft is the input for creating or updating a note.
type Draft struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Format     string `json:"format,omitempty"` // text, markdown or html
	NotebookID string `json:"notebook_id,omitempty"`
}

// Options tunes listing.
type Options struct {
	PageSize int // notes per metadata page
	MaxPages int // 0 walks until the listing is exhausted
}

// Service wraps one note store. It holds no per-call state.
type Service struct {
	store    Store
	log      *slog.Logger
	pageSize int
	maxPages int
}

// NewService wraps store. Zero options fall back to 10 notes per page with no page cap.
func NewService(store Store, log *slog.Logger, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.MaxPages < 0 {
		opts.MaxPages = 0
	}
	return &Service{
		store:    store,
		log:      log,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
	}
}

// Get fetches one note and renders its content in mode.
func (s *Service) Get(ctx context.Context, id string, mode enml.Mode) (*Note, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", enml.ErrInvalidMode, mode)
	}
	n, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	content := n.Content
	if content == "" {
		if content, err = s.store.GetNoteContent(ctx, id); err != nil {
			return nil, err
		}
	}
	text, err := enml.Normalize(content, mode, s.Resolver(ctx, n.GUID))
	if err != nil {
		return nil, err
	}
	return &Note{
		ID:         n.GUID,
		Title:      n.Title,
		NotebookID: n.NotebookGUID,
		Mode:       mode,
		Text:       text,
		Created:    fromMillis(n.Created),
		Updated:    fromMillis(n.Updated),
	}, nil
}

// Create composes d into ENML and stores it as a new note.
func (s *Service) Create(ctx context.Context, d Draft) (*notestore.Note, error) {
	note, err := s.draftToNote(d)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateNote(ctx, note)
	if err != nil {
		return nil, err
	}
	s.log.Info("note created", "note_id", created.GUID, "notebook", created.NotebookGUID)
	return created, nil
}

// Update replaces the title and content of note id with d.
func (s *Service) Update(ctx context.Context, id string, d Draft) (*notestore.Note, error) {
	note, err := s.draftToNote(d)
	if err != nil {
		return nil, err
	}
	note.GUID = id
	updated, err := s.store.UpdateNote(ctx, note)
	if err != nil {
		return nil, err
	}
	s.log.Info("note updated", "note_id", updated.GUID, "usn", updated.UpdateSequenceNum)
	return updated, nil
}

func (s *Service) draftToNote(d Draft) (notestore.Note, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return notestore.Note{}, fmt.Errorf("%w: title is required", ErrInvalidNote)
	}
	if len(title) > maxTitleLen {
		return notestore.Note{}, fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidNote, maxTitleLen)
	}
	c, err := compose.ForFormat(d.Format)
	if err != nil {
		return notestore.Note{}, fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}
	body, err := c.Compose(strings.NewReader(d.Content))
	if err != nil {
		return notestore.Note{}, fmt.Errorf("compose note body: %w", err)
	}
	return notestore.Note{
		Title:        title,
		Content:      enml.Wrap(body),
		NotebookGUID: d.NotebookID,
	}, nil
}

// Notebooks lists the account's notebooks.
func (s *Service) Notebooks(ctx context.Context) ([]notestore.Notebook, error) {
	return s.store.ListNotebooks(ctx)
}

// Version returns the account-wide update count. It changes whenever any
// notebook changes.
func (s *Service) Version(ctx context.Context) (int32, error) {
	state, err := s.store.GetSyncState(ctx)
	if err != nil {
		return 0, err
	}
	return state.UpdateCount, nil
}

// Notes returns the notes of notebookID updated after since (Unix ms),
// newest first, rendered in mode. The returned cursor is the newest update
// time seen, or since when nothing newer exists.
func (s *Service) Notes(ctx context.Context, notebookID string, since int64, mode enml.Mode) ([]Note, int64, error) {
	if !mode.Valid() {
		return nil, since, fmt.Errorf("%w: %q", enml.ErrInvalidMode, mode)
	}

	filter := notestore.NoteFilter{
		Order:        notestore.SortUpdated,
		Ascending:    false,
		NotebookGUID: notebookID,
	}
	log := s.log.With("notebook", notebookID, "since", since)

	cursor := since
	var out []Note
	for page := 0; s.maxPages == 0 || page < s.maxPages; page++ {
		offset := int32(page * s.pageSize)
		list, err := s.store.FindNotesMetadata(ctx, filter, offset, int32(s.pageSize))
		if err != nil {
			return nil, since, fmt.Errorf("list notes page %d: %w", page, err)
		}
		if page == 0 && len(list.Notes) > 0 && list.Notes[0].Updated > cursor {
			cursor = list.Notes[0].Updated
		}

		stale := false
		for _, md := range list.Notes {
			// Newest first: everything from here on was already seen.
			if md.Updated <= since {
				stale = true
				break
			}
			content, err := s.store.GetNoteContent(ctx, md.GUID)
			if err != nil {
				return nil, since, fmt.Errorf("note %s: %w", md.GUID, err)
			}
			text, err := enml.Normalize(content, mode, s.Resolver(ctx, md.GUID))
			if err != nil {
				return nil, since, err
			}
			notebook := md.NotebookGUID
			if notebook == "" {
				notebook = notebookID
			}
			out = append(out, Note{
				ID:         md.GUID,
				Title:      md.Title,
				NotebookID: notebook,
				Mode:       mode,
				Text:       text,
				Created:    fromMillis(md.Created),
				Updated:    fromMillis(md.Updated),
			})
		}

		next := int(offset) + len(list.Notes)
		if stale || len(list.Notes) == 0 || next >= int(list.TotalNotes) {
			break
		}
	}

	log.Info("listed notes", "new", len(out), "cursor", cursor)
	return out, cursor, nil
}

// Resolver returns a media resolver for one note's attachments. Lookup
// failures are logged and reported as a missing resource.
func (s *Service) Resolver(ctx context.Context, noteGUID string) enml.MediaResolver {
	return func(hash string) (string, bool) {
		raw, err := hex.DecodeString(hash)
		if err != nil || len(raw) == 0 {
			s.log.Warn("malformed media hash", "note_id", noteGUID, "hash", hash)
			return "", false
		}
		res, err := s.store.GetResourceByHash(ctx, noteGUID, raw)
		if err != nil {
			if !errors.Is(err, notestore.ErrNotFound) {
				s.log.Warn("resource lookup failed", "note_id", noteGUID, "hash", hash, "error", err)
			}
			return "", false
		}
		if res == nil || res.Attributes == nil || strings.TrimSpace(res.Attributes.SourceURL) == "" {
			return "", false
		}
		return res.Attributes.SourceURL, true
	}
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
