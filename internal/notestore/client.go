// Package notestore is a JSON-over-HTTP client for the note service's
// note store and user store.
package notestore

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the note store answers 404.
var ErrNotFound = errors.New("not found")

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Client talks to one note store on behalf of one auth token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	Stats *CallStats
}

// NewClient returns a client for the note store at baseURL. stats may be nil.
func NewClient(baseURL, token string, timeout time.Duration, stats *CallStats) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: stats,
	}
}

// GetNote fetches a note with its ENML content.
func (c *Client) GetNote(ctx context.Context, guid string) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(guid)+"?withContent=true", nil, &note); err != nil {
		return nil, fmt.Errorf("get note %s: %w", guid, err)
	}
	return &note, nil
}

// GetNoteContent fetches only the ENML content of a note.
func (c *Client) GetNoteContent(ctx context.Context, guid string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(guid)+"/content", nil, &resp); err != nil {
		return "", fmt.Errorf("get note content %s: %w", guid, err)
	}
	return resp.Content, nil
}

// CreateNote stores a new note and returns it with its GUID assigned.
func (c *Client) CreateNote(ctx context.Context, note Note) (*Note, error) {
	var created Note
	if err := c.do(ctx, http.MethodPost, "/notes", note, &created); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &created, nil
}

// UpdateNote replaces the title and content of an existing note.
func (c *Client) UpdateNote(ctx context.Context, note Note) (*Note, error) {
	if note.GUID == "" {
		return nil, fmt.Errorf("update note: missing guid")
	}
	var updated Note
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(note.GUID), note, &updated); err != nil {
		return nil, fmt.Errorf("update note %s: %w", note.GUID, err)
	}
	return &updated, nil
}

// ListNotebooks returns every notebook in the account.
func (c *Client) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	var notebooks []Notebook
	if err := c.do(ctx, http.MethodGet, "/notebooks", nil, &notebooks); err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	return notebooks, nil
}

type findRequest struct {
	Filter     NoteFilter `json:"filter"`
	Offset     int32      `json:"offset"`
	MaxNotes   int32      `json:"maxNotes"`
	ResultSpec ResultSpec `json:"resultSpec"`
}

// FindNotesMetadata returns one page of note metadata matching filter.
func (c *Client) FindNotesMetadata(ctx context.Context, filter NoteFilter, offset, maxNotes int32) (*NotesMetadataList, error) {
	req := findRequest{
		Filter:   filter,
		Offset:   offset,
		MaxNotes: maxNotes,
		ResultSpec: ResultSpec{
			IncludeTitle:        true,
			IncludeCreated:      true,
			IncludeUpdated:      true,
			IncludeNotebookGUID: true,
		},
	}
	var list NotesMetadataList
	if err := c.do(ctx, http.MethodPost, "/notes/metadata", req, &list); err != nil {
		return nil, fmt.Errorf("find notes metadata: %w", err)
	}
	return &list, nil
}

// GetResourceByHash looks up an attachment of noteGUID by its content hash.
func (c *Client) GetResourceByHash(ctx context.Context, noteGUID string, hash []byte) (*Resource, error) {
	path := "/notes/" + url.PathEscape(noteGUID) + "/resources/by-hash/" + hex.EncodeToString(hash)
	var res Resource
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, fmt.Errorf("get resource %x: %w", hash, err)
	}
	return &res, nil
}

// GetSyncState returns the account-wide sync state.
func (c *Client) GetSyncState(ctx context.Context) (*SyncState, error) {
	var state SyncState
	if err := c.do(ctx, http.MethodGet, "/sync-state", nil, &state); err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return &state, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if c.Stats != nil {
		c.Stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
