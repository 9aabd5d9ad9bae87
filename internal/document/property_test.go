package document

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/kobzarvs/qpad/internal/elevate"
)

// Undoing every edit through the session restores the original text in the
// buffer, redoing replays to the final text, and neither direction records
// the widget's echo of the programmatic change.
func TestSessionUndoRedoSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		edits := rapid.SliceOfNDistinct(rapid.StringN(1, 12, -1), 1, 15, rapid.ID[string]).Draw(t, "edits")

		buf := &fakeBuffer{}
		s := NewSession(buf, &fakeShell{}, elevate.NewCache(nil), elevate.NewWriter(nil, ""), ModePlain)
		buf.session = s

		for _, e := range edits {
			buf.typeText(e)
		}
		final := edits[len(edits)-1]

		for range edits {
			if err := s.Undo(); err != nil {
				t.Fatalf("Undo: %v", err)
			}
		}
		if s.Text() != "" || string(buf.text) != "" {
			t.Fatalf("after undo text=%q buffer=%q, want empty", s.Text(), string(buf.text))
		}
		if u, r := s.history.Depth(); u != 0 || r != len(edits) {
			t.Fatalf("Depth = %d/%d, want 0/%d", u, r, len(edits))
		}

		for range edits {
			if err := s.Redo(); err != nil {
				t.Fatalf("Redo: %v", err)
			}
		}
		if s.Text() != final || string(buf.text) != final {
			t.Fatalf("after redo text=%q, want %q", s.Text(), final)
		}
		if u, r := s.history.Depth(); u != len(edits) || r != 0 {
			t.Fatalf("Depth = %d/%d, want %d/0", u, r, len(edits))
		}
	})
}
