// Package history keeps undo/redo stacks of full document snapshots.
package history

// History stores whole-text snapshots rather than diffs. Depth is unbounded,
// so very long sessions on large documents grow linearly in memory.
type History struct {
	undo []string
	redo []string
}

func New() *History {
	return &History{}
}

// Record pushes the text as it was before a user edit and drops the redo chain.
func (h *History) Record(previous string) {
	h.undo = append(h.undo, previous)
	h.redo = h.redo[:0]
}

// Undo pops the most recent snapshot and parks current on the redo stack.
// It reports false when there is nothing to undo.
func (h *History) Undo(current string) (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	idx := len(h.undo) - 1
	prev := h.undo[idx]
	h.undo = h.undo[:idx]
	h.redo = append(h.redo, current)
	return prev, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current string) (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	idx := len(h.redo) - 1
	next := h.redo[idx]
	h.redo = h.redo[:idx]
	h.undo = append(h.undo, current)
	return next, true
}

func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the number of undo and redo entries.
func (h *History) Depth() (int, int) {
	return len(h.undo), len(h.redo)
}
