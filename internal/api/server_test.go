package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/notewrap/internal/config"
	"github.com/dgallion1/notewrap/internal/enml"
	"github.com/dgallion1/notewrap/internal/notes"
	"github.com/dgallion1/notewrap/internal/notestore"
	"github.com/dgallion1/notewrap/internal/pipeline"
	"github.com/dgallion1/notewrap/internal/syncstate/memory"
)

const testKey = "secret"

const storedNote = `<?xml version="1.0" encoding="UTF-8"?><en-note>` +
	`<div style="color:red"><b>Groceries</b></div><div>&nbsp;</div><div>Milk<br/>Eggs</div></en-note>`

// fakeNotes normalizes a single stored note with the real enml package.
type fakeNotes struct {
	version  int32
	drafts   []notes.Draft
	notesErr error
	since    int64
}

func (f *fakeNotes) Get(_ context.Context, id string, mode enml.Mode) (*notes.Note, error) {
	if id != "n1" {
		return nil, notestore.ErrNotFound
	}
	text, err := enml.Normalize(storedNote, mode, nil)
	if err != nil {
		return nil, err
	}
	return &notes.Note{ID: "n1", Title: "Shopping", Mode: mode, Text: text}, nil
}

func (f *fakeNotes) Create(_ context.Context, d notes.Draft) (*notestore.Note, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", notes.ErrInvalidNote)
	}
	f.drafts = append(f.drafts, d)
	return &notestore.Note{GUID: "new", Title: d.Title, UpdateSequenceNum: 1}, nil
}

func (f *fakeNotes) Update(_ context.Context, id string, d notes.Draft) (*notestore.Note, error) {
	if id != "n1" {
		return nil, notestore.ErrNotFound
	}
	f.drafts = append(f.drafts, d)
	return &notestore.Note{GUID: id, Title: d.Title, UpdateSequenceNum: 2}, nil
}

func (f *fakeNotes) Notebooks(context.Context) ([]notestore.Notebook, error) {
	return []notestore.Notebook{{GUID: "nb1", Name: "Personal", DefaultNotebook: true}}, nil
}

func (f *fakeNotes) Notes(_ context.Context, _ string, since int64, mode enml.Mode) ([]notes.Note, int64, error) {
	f.since = since
	if f.notesErr != nil {
		return nil, since, f.notesErr
	}
	if since >= 300 {
		return nil, since, nil
	}
	return []notes.Note{{ID: "n1", Mode: mode, Text: "x"}}, 300, nil
}

func (f *fakeNotes) Version(context.Context) (int32, error) {
	return f.version, nil
}

func newTestServer(t *testing.T, svc *fakeNotes) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:          testKey,
		DefaultMode:     enml.ModeBasic,
		MaxContentBytes: 1 << 20,
	}
	orch := pipeline.NewOrchestrator(pipeline.Config{Workers: 1, QueueSize: 4}, svc, memory.New(), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	stats := notestore.NewCallStats(time.Hour)
	stats.Record(12)
	return NewServer(svc, orch, stats, log, cfg), orch
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_Rejects(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without header, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}
}

func TestNormalize_Modes(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	content := `<en-note><div>Hi<br/>there</div><en-media hash="abc" type="image/png"></en-media></en-note>`

	cases := []struct {
		mode string
		want string
	}{
		{"raw", content},
		{"basic", `<div>Hi<br/>there</div><img src="https://cdn/abc.png"/>`},
		{"strip", "Hi\r\n\r\nthere"},
		{"", `<div>Hi<br/>there</div><img src="https://cdn/abc.png"/>`},
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodPost, "/api/normalize", map[string]any{
			"content": content,
			"mode":    tc.mode,
			"media":   map[string]string{"abc": "https://cdn/abc.png"},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("mode %q: expected 200, got %d: %s", tc.mode, rec.Code, rec.Body.String())
		}
		out := decode(t, rec)
		if out["output"] != tc.want {
			t.Errorf("mode %q: expected %q, got %q", tc.mode, tc.want, out["output"])
		}
		media, _ := out["media"].([]any)
		if len(media) != 1 {
			t.Errorf("mode %q: expected one media ref, got %v", tc.mode, out["media"])
		}
	}
}

func TestNormalize_InvalidMode(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodPost, "/api/normalize", map[string]any{"content": "<en-note/>", "mode": "html"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(decode(t, rec)["error"].(string), "invalid") {
		t.Errorf("expected invalid mode error, got %s", rec.Body.String())
	}
}

func TestNormalize_TooLarge(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	s.cfg.MaxContentBytes = 16
	rec := do(t, s, http.MethodPost, "/api/normalize", map[string]any{"content": strings.Repeat("x", 64), "mode": "raw"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestGetNote_JSON(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notes/n1?mode=strip", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decode(t, rec)
	if out["text"] != "Groceries Milk\r\n\r\nEggs" {
		t.Errorf("unexpected text %q", out["text"])
	}
	if out["mode"] != "strip" {
		t.Errorf("unexpected mode %v", out["mode"])
	}
}

func TestGetNote_NotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notes/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetNote_Markdown(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notes/n1?format=markdown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "**Groceries**") {
		t.Errorf("expected markdown bold, got %q", rec.Body.String())
	}
}

func TestGetNote_PDF(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notes/n1?format=pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected PDF body")
	}
}

func TestGetNote_UnsupportedFormat(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notes/n1?format=docx", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListNotes(t *testing.T) {
	svc := &fakeNotes{}
	s, _ := newTestServer(t, svc)

	rec := do(t, s, http.MethodGet, "/api/notebooks/nb1/notes?since=100&mode=strip", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decode(t, rec)
	if out["timestamp"] != float64(300) {
		t.Errorf("expected cursor 300, got %v", out["timestamp"])
	}
	if svc.since != 100 {
		t.Errorf("expected since=100 passed through, got %d", svc.since)
	}

	rec = do(t, s, http.MethodGet, "/api/notebooks/nb1/notes?since=300", nil)
	out = decode(t, rec)
	if list, ok := out["notes"].([]any); !ok || len(list) != 0 {
		t.Errorf("expected empty notes array, got %v", out["notes"])
	}
	if out["timestamp"] != float64(300) {
		t.Errorf("expected cursor to stay at 300, got %v", out["timestamp"])
	}
}

func TestListNotes_BadSince(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/notebooks/nb1/notes?since=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListNotes_UpstreamBusy(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{notesErr: &notestore.RetryableError{StatusCode: 503, Message: "busy"}})
	rec := do(t, s, http.MethodGet, "/api/notebooks/nb1/notes", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestNotebooksAndVersion(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{version: 42})

	rec := do(t, s, http.MethodGet, "/api/notebooks", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Personal"`) {
		t.Errorf("unexpected notebooks response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/version", nil)
	if decode(t, rec)["update_count"] != float64(42) {
		t.Errorf("unexpected version response %s", rec.Body.String())
	}
}

func TestCreateAndUpdateNote(t *testing.T) {
	svc := &fakeNotes{}
	s, _ := newTestServer(t, svc)

	rec := do(t, s, http.MethodPost, "/api/notes", notes.Draft{Title: "Hello", Content: "# Hi", Format: "markdown"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["id"] != "new" {
		t.Errorf("unexpected create response %s", rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/notes", notes.Draft{Content: "no title"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing title, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPut, "/api/notes/n1", notes.Draft{Title: "Renamed", Content: "x"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on update, got %d", rec.Code)
	}
	if len(svc.drafts) != 2 || svc.drafts[0].Format != "markdown" {
		t.Errorf("unexpected drafts %+v", svc.drafts)
	}
}

func TestSync_SubmitAndPoll(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{version: 7})

	rec := do(t, s, http.MethodPost, "/api/sync/nb1?mode=strip", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	pollURL := decode(t, rec)["poll_url"].(string)

	deadline := time.Now().Add(2 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		out := decode(t, do(t, s, http.MethodGet, pollURL, nil))
		status, _ = out["status"].(string)
		if status == string(pipeline.StatusCompleted) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if status != string(pipeline.StatusCompleted) {
		t.Fatalf("sync did not complete, last status %q", status)
	}

	out := decode(t, do(t, s, http.MethodGet, "/api/sync/cursors", nil))
	cursors, _ := out["cursors"].([]any)
	if len(cursors) != 1 {
		t.Fatalf("expected one cursor, got %v", out["cursors"])
	}
	if c := cursors[0].(map[string]any); c["timestamp"] != float64(300) || c["update_count"] != float64(7) {
		t.Errorf("unexpected cursor %v", c)
	}
}

func TestSync_UnknownJob(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodGet, "/api/sync/nope/status", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSync_InvalidMode(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	rec := do(t, s, http.MethodPost, "/api/sync/nb1?mode=pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNoteStoreStats(t *testing.T) {
	s, _ := newTestServer(t, &fakeNotes{})
	out := decode(t, do(t, s, http.MethodGet, "/api/stats/notestore", nil))
	stats, ok := out["stats"].(map[string]any)
	if !ok || stats["calls"] != float64(1) {
		t.Errorf("unexpected stats %v", out)
	}
}
