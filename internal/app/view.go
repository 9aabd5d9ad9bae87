package app

import (
	"fmt"
	"strings"
)

// TextView is the editable text area. It implements document.Buffer; every
// change, user or programmatic, is reported through onChange.
type TextView struct {
	text   []rune
	cursor int
	anchor int // selection start, -1 when nothing is selected
	goal   int // column kept while moving vertically, -1 when unset

	top    int
	left   int
	reveal int // row to bring into view on the next render, -1 when none

	onChange func(text string)
}

func NewTextView() *TextView {
	return &TextView{anchor: -1, goal: -1, reveal: -1}
}

func (v *TextView) Text() string { return string(v.text) }
func (v *TextView) Len() int     { return len(v.text) }
func (v *TextView) Cursor() int  { return v.cursor }

// SetText replaces the whole text and moves the cursor to the start.
func (v *TextView) SetText(text string) error {
	v.text = []rune(text)
	v.cursor = 0
	v.anchor = -1
	v.goal = -1
	v.top, v.left = 0, 0
	v.changed()
	return nil
}

// ReplaceRange replaces runes [start, end) and leaves the cursor after the
// inserted text.
func (v *TextView) ReplaceRange(start, end int, text string) error {
	if start < 0 || end < start || end > len(v.text) {
		return fmt.Errorf("replace range %d-%d out of bounds (len %d)", start, end, len(v.text))
	}
	ins := []rune(text)
	out := make([]rune, 0, len(v.text)-(end-start)+len(ins))
	out = append(out, v.text[:start]...)
	out = append(out, ins...)
	out = append(out, v.text[end:]...)
	v.text = out
	v.cursor = start + len(ins)
	v.anchor = -1
	v.goal = -1
	v.changed()
	return nil
}

func (v *TextView) SelectRange(start, end int) {
	v.anchor = clamp(start, 0, len(v.text))
	v.cursor = clamp(end, 0, len(v.text))
	v.goal = -1
}

func (v *TextView) ScrollToRange(start, _ int) {
	row, _ := v.RowCol(clamp(start, 0, len(v.text)))
	v.reveal = row
}

func (v *TextView) changed() {
	if v.onChange != nil {
		v.onChange(string(v.text))
	}
}

// Selection returns the selected range in order.
func (v *TextView) Selection() (int, int, bool) {
	if v.anchor < 0 || v.anchor == v.cursor {
		return 0, 0, false
	}
	if v.anchor < v.cursor {
		return v.anchor, v.cursor, true
	}
	return v.cursor, v.anchor, true
}

func (v *TextView) SelectedText() string {
	start, end, ok := v.Selection()
	if !ok {
		return ""
	}
	return string(v.text[start:end])
}

func (v *TextView) SelectAll() {
	v.anchor = 0
	v.cursor = len(v.text)
	v.goal = -1
}

// Insert types s over the selection.
func (v *TextView) Insert(s string) {
	start, end, ok := v.Selection()
	if !ok {
		start, end = v.cursor, v.cursor
	}
	_ = v.ReplaceRange(start, end, s)
}

// DeleteSelection removes the selection and reports whether there was one.
func (v *TextView) DeleteSelection() bool {
	start, end, ok := v.Selection()
	if !ok {
		return false
	}
	_ = v.ReplaceRange(start, end, "")
	return true
}

func (v *TextView) Backspace() {
	if v.DeleteSelection() || v.cursor == 0 {
		return
	}
	_ = v.ReplaceRange(v.cursor-1, v.cursor, "")
}

func (v *TextView) Delete() {
	if v.DeleteSelection() || v.cursor >= len(v.text) {
		return
	}
	_ = v.ReplaceRange(v.cursor, v.cursor+1, "")
}

// moveTo places the cursor at pos, extending the selection when extend is set.
func (v *TextView) moveTo(pos int, extend bool) {
	pos = clamp(pos, 0, len(v.text))
	if extend {
		if v.anchor < 0 {
			v.anchor = v.cursor
		}
	} else {
		v.anchor = -1
	}
	v.cursor = pos
}

func (v *TextView) MoveLeft(extend bool) {
	if start, _, ok := v.Selection(); ok && !extend {
		v.moveTo(start, false)
	} else {
		v.moveTo(v.cursor-1, extend)
	}
	v.goal = -1
}

func (v *TextView) MoveRight(extend bool) {
	if _, end, ok := v.Selection(); ok && !extend {
		v.moveTo(end, false)
	} else {
		v.moveTo(v.cursor+1, extend)
	}
	v.goal = -1
}

// MoveLines moves the cursor n rows down (up when negative), keeping the
// column the cursor had before the first vertical move.
func (v *TextView) MoveLines(n int, extend bool) {
	row, col := v.RowCol(v.cursor)
	if v.goal < 0 {
		v.goal = col
	}
	goal := v.goal
	v.moveTo(v.Offset(row+n, goal), extend)
	v.goal = goal
}

func (v *TextView) MoveHome(extend bool) {
	row, _ := v.RowCol(v.cursor)
	v.moveTo(v.Offset(row, 0), extend)
	v.goal = -1
}

func (v *TextView) MoveEnd(extend bool) {
	row, _ := v.RowCol(v.cursor)
	v.moveTo(v.Offset(row, len(v.text)), extend)
	v.goal = -1
}

func (v *TextView) MoveStart(extend bool) {
	v.moveTo(0, extend)
	v.goal = -1
}

func (v *TextView) MoveEndOfText(extend bool) {
	v.moveTo(len(v.text), extend)
	v.goal = -1
}

// GotoLine moves to the start of 1-based line n, clamped to the document.
func (v *TextView) GotoLine(n int) {
	row := clamp(n-1, 0, v.LineCount()-1)
	v.moveTo(v.Offset(row, 0), false)
	v.goal = -1
	v.reveal = row
}

// LineCount is the number of rows; an empty text has one.
func (v *TextView) LineCount() int {
	n := 1
	for _, r := range v.text {
		if r == '\n' {
			n++
		}
	}
	return n
}

// Lines splits the text into rows without the newlines.
func (v *TextView) Lines() [][]rune {
	lines := make([][]rune, 0, 16)
	start := 0
	for i, r := range v.text {
		if r == '\n' {
			lines = append(lines, v.text[start:i])
			start = i + 1
		}
	}
	return append(lines, v.text[start:])
}

// RowCol converts a rune offset into a zero-based row and column.
func (v *TextView) RowCol(pos int) (int, int) {
	row, col := 0, 0
	for i := 0; i < pos && i < len(v.text); i++ {
		if v.text[i] == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return row, col
}

// Offset converts a row and column into a rune offset. Both are clamped.
func (v *TextView) Offset(row, col int) int {
	if row < 0 {
		return 0
	}
	pos, r := 0, 0
	for r < row && pos < len(v.text) {
		if v.text[pos] == '\n' {
			r++
		}
		pos++
	}
	if r < row {
		return len(v.text)
	}
	for c := 0; c < col && pos < len(v.text) && v.text[pos] != '\n'; c++ {
		pos++
	}
	return pos
}

// Counts returns the word and character totals shown in the status bar.
func (v *TextView) Counts() (words, chars int) {
	return len(strings.Fields(string(v.text))), len(v.text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
