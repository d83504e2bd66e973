package memory

import (
	"context"
	"testing"

	"github.com/dgallion1/notewrap/internal/syncstate"
)

func TestStore_CursorDefaultsAndList(t *testing.T) {
	st := New()
	ctx := context.Background()

	c, err := st.Cursor(ctx, "nb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (syncstate.Cursor{NotebookID: "nb"}) {
		t.Fatalf("expected zero cursor, got %+v", c)
	}

	_ = st.SaveCursor(ctx, syncstate.Cursor{NotebookID: "z", Timestamp: 2})
	_ = st.SaveCursor(ctx, syncstate.Cursor{NotebookID: "nb", Timestamp: 1})

	all, _ := st.List(ctx)
	if len(all) != 2 || all[0].NotebookID != "nb" || all[1].NotebookID != "z" {
		t.Fatalf("unexpected list: %+v", all)
	}
	c, _ = st.Cursor(ctx, "z")
	if c.Timestamp != 2 {
		t.Fatalf("expected timestamp 2, got %d", c.Timestamp)
	}
}

var _ syncstate.Store = (*Store)(nil)
