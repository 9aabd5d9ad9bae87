package history

import (
	"testing"

	"pgregory.net/rapid"
)

func TestUndoRedoEmpty(t *testing.T) {
	h := New()
	if got, ok := h.Undo("x"); ok || got != "" {
		t.Fatalf("Undo on empty = %q, %v, want \"\", false", got, ok)
	}
	if got, ok := h.Redo("x"); ok || got != "" {
		t.Fatalf("Redo on empty = %q, %v, want \"\", false", got, ok)
	}
	if u, r := h.Depth(); u != 0 || r != 0 {
		t.Fatalf("Depth = %d/%d, want 0/0", u, r)
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := New()
	h.Record("")
	h.Record("a")
	if got, ok := h.Undo("ab"); !ok || got != "a" {
		t.Fatalf("Undo = %q, %v, want %q, true", got, ok, "a")
	}
	if !h.CanRedo() {
		t.Fatalf("CanRedo = false after undo")
	}
	h.Record("a")
	if h.CanRedo() {
		t.Fatalf("CanRedo = true after new edit, want false")
	}
	if u, _ := h.Depth(); u != 2 {
		t.Fatalf("undo depth = %d, want 2", u)
	}
}

func TestUndoRedoExactSnapshots(t *testing.T) {
	h := New()
	h.Record("one")
	h.Record("one two")

	got, _ := h.Undo("one two three")
	if got != "one two" {
		t.Fatalf("undo 1 = %q, want %q", got, "one two")
	}
	got, _ = h.Undo(got)
	if got != "one" {
		t.Fatalf("undo 2 = %q, want %q", got, "one")
	}
	got, _ = h.Redo(got)
	if got != "one two" {
		t.Fatalf("redo 1 = %q, want %q", got, "one two")
	}
	got, _ = h.Redo(got)
	if got != "one two three" {
		t.Fatalf("redo 2 = %q, want %q", got, "one two three")
	}
	if h.CanRedo() {
		t.Fatalf("CanRedo = true, want false")
	}
}

func TestReset(t *testing.T) {
	h := New()
	h.Record("a")
	h.Undo("b")
	h.Reset()
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("stacks not empty after Reset")
	}
}

// Undoing n distinct edits returns to the original text and redoing n
// replays to the final text.
func TestUndoRedoSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		texts := rapid.SliceOfNDistinct(rapid.String(), 1, 20, rapid.ID[string]).Draw(t, "texts")
		original := rapid.String().Filter(func(s string) bool {
			for _, x := range texts {
				if x == s {
					return false
				}
			}
			return true
		}).Draw(t, "original")

		h := New()
		current := original
		for _, next := range texts {
			h.Record(current)
			current = next
		}
		final := current

		for i := range texts {
			prev, ok := h.Undo(current)
			if !ok {
				t.Fatalf("undo %d: nothing to undo", i)
			}
			current = prev
		}
		if current != original {
			t.Fatalf("after undo = %q, want %q", current, original)
		}
		if h.CanUndo() {
			t.Fatalf("CanUndo = true after full undo")
		}

		for i := range texts {
			next, ok := h.Redo(current)
			if !ok {
				t.Fatalf("redo %d: nothing to redo", i)
			}
			current = next
		}
		if current != final {
			t.Fatalf("after redo = %q, want %q", current, final)
		}
	})
}
