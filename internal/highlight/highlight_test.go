package highlight

import "testing"

func hasSpan(spans []Span, kind string, start, end int) bool {
	for _, sp := range spans {
		if sp.Kind == kind && sp.StartCol == start && sp.EndCol == end {
			return true
		}
	}
	return false
}

func hasKind(spans []Span, kind string) bool {
	for _, sp := range spans {
		if sp.Kind == kind {
			return true
		}
	}
	return false
}

func TestDisabledHasNoSpans(t *testing.T) {
	h := New()
	h.Update("# Title\n")
	if got := h.Lines(0, 0); got != nil {
		t.Fatalf("Lines while disabled = %v, want nil", got)
	}
}

func TestMarkdownSpans(t *testing.T) {
	h := New()
	h.SetEnabled(true)
	h.Update("# Title\nsome *em* text\n```\ncode\n```\n")

	got := h.Lines(0, 4)
	if !hasKind(got[0], KindHeading) {
		t.Fatalf("row 0 spans = %v, want heading", got[0])
	}
	if !hasSpan(got[1], KindEmphasis, 5, 9) {
		t.Fatalf("row 1 spans = %v, want emphasis 5-9", got[1])
	}
	if !hasSpan(got[3], KindCode, 0, 4) {
		t.Fatalf("row 3 spans = %v, want code 0-4", got[3])
	}
	if hasKind(got[3], KindEmphasis) {
		t.Fatalf("code row ran through inline grammar: %v", got[3])
	}
}

func TestHeadingWithoutTrailingNewline(t *testing.T) {
	h := New()
	h.SetEnabled(true)
	h.Update("# Title")
	got := h.Lines(0, 0)
	if !hasSpan(got[0], KindHeading, 0, 7) {
		t.Fatalf("row 0 spans = %v, want heading 0-7", got[0])
	}
}

func TestRuneColumns(t *testing.T) {
	h := New()
	h.SetEnabled(true)
	h.Update("héé *x*\n")
	got := h.Lines(0, 0)
	if !hasSpan(got[0], KindEmphasis, 4, 7) {
		t.Fatalf("row 0 spans = %v, want emphasis 4-7 in runes", got[0])
	}
}

func TestSetEnabledFalseDropsTree(t *testing.T) {
	h := New()
	h.SetEnabled(true)
	h.Update("# Title\n")
	h.SetEnabled(false)
	if h.Enabled() {
		t.Fatalf("Enabled = true after disable")
	}
	h.SetEnabled(true)
	if got := h.Lines(0, 0); got != nil {
		t.Fatalf("stale spans after re-enable: %v", got)
	}
}

func TestRuneCol(t *testing.T) {
	line := "aé b"
	tests := []struct{ in, want int }{{0, 0}, {1, 1}, {3, 2}, {5, 4}, {99, 4}}
	for _, tt := range tests {
		if got := runeCol(line, tt.in); got != tt.want {
			t.Fatalf("runeCol(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
