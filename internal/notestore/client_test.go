package notestore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "tok", 5*time.Second, NewCallStats(time.Hour))
}

func TestClient_GetNoteSendsTokenAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/notes/n1" || r.URL.Query().Get("withContent") != "true" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		json.NewEncoder(w).Encode(Note{GUID: "n1", Title: "Test Note", Content: "<en-note>hi</en-note>", Updated: 42})
	})

	note, err := c.GetNote(context.Background(), "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Title != "Test Note" || note.Content != "<en-note>hi</en-note>" || note.Updated != 42 {
		t.Errorf("unexpected note: %+v", note)
	}
	if c.Stats.Snapshot().Calls != 1 {
		t.Errorf("expected call to be recorded in stats")
	}
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.GetNoteContent(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_RetryableStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	_, err := c.ListNotebooks(context.Background())
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if retryErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", retryErr.StatusCode)
	}
}

func TestClient_OtherStatusIsNotRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusForbidden)
	})
	_, err := c.GetSyncState(context.Background())
	var retryErr *RetryableError
	if err == nil || errors.As(err, &retryErr) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestClient_FindNotesMetadataRequestBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/notes/metadata" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req findRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Filter.NotebookGUID != "nb" || req.Filter.Order != SortUpdated || req.Offset != 10 || req.MaxNotes != 10 {
			t.Errorf("unexpected request body: %+v", req)
		}
		if !req.ResultSpec.IncludeTitle || !req.ResultSpec.IncludeUpdated {
			t.Errorf("expected title and updated in result spec: %+v", req.ResultSpec)
		}
		json.NewEncoder(w).Encode(NotesMetadataList{StartIndex: 10, TotalNotes: 11, Notes: []NoteMetadata{{GUID: "a", Updated: 5}}})
	})

	list, err := c.FindNotesMetadata(context.Background(), NoteFilter{Order: SortUpdated, NotebookGUID: "nb"}, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Notes) != 1 || list.Notes[0].GUID != "a" || list.TotalNotes != 11 {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestClient_GetResourceByHashHexEncodesHash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notes/n1/resources/by-hash/bb54" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Resource{GUID: "r1", Attributes: &ResourceAttributes{SourceURL: "https://example/r.png"}})
	})
	res, err := c.GetResourceByHash(context.Background(), "n1", []byte{0xbb, 0x54})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attributes == nil || res.Attributes.SourceURL != "https://example/r.png" {
		t.Errorf("unexpected resource: %+v", res)
	}
}

func TestDial_DiscoversNoteStoreURL(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SyncState{UpdateCount: 7})
	}))
	defer store.Close()

	user := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/edam/user/notestore-url" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"noteStoreUrl": store.URL})
	}))
	defer user.Close()

	c, err := Dial(context.Background(), Options{Domain: user.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
	state, err := c.GetSyncState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.UpdateCount != 7 {
		t.Errorf("expected update count 7, got %d", state.UpdateCount)
	}
}

func TestDial_RequiresToken(t *testing.T) {
	if _, err := Dial(context.Background(), Options{NoteStoreURL: "http://localhost"}); err == nil {
		t.Fatal("expected error without token")
	}
}
