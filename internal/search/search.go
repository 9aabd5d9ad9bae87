// Package search implements literal find with wraparound over a text buffer.
//
// Positions are rune offsets, the unit a text widget reports for its cursor.
package search

import "unicode"

// Direction selects which way Find scans from the start position.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Span is a half-open rune range [Start, End).
type Span struct {
	Start int
	End   int
}

// Options configures a search.
type Options struct {
	MatchCase bool
	Direction Direction
}

// Find looks for pattern in buffer starting at from. A forward search returns
// the first match starting at or after from, a backward search the last match
// ending at or before from. When that fails the search is retried once from
// the opposite end of the buffer. An empty pattern never matches.
func Find(buffer, pattern string, from int, opts Options) (Span, bool) {
	if pattern == "" {
		return Span{}, false
	}
	hay := fold([]rune(buffer), opts.MatchCase)
	needle := fold([]rune(pattern), opts.MatchCase)
	if len(needle) > len(hay) {
		return Span{}, false
	}
	from = clamp(from, 0, len(hay))

	if opts.Direction == Backward {
		if start, ok := lastIndex(hay, needle, from); ok {
			return Span{Start: start, End: start + len(needle)}, true
		}
		if start, ok := lastIndex(hay, needle, len(hay)); ok {
			return Span{Start: start, End: start + len(needle)}, true
		}
		return Span{}, false
	}

	if start, ok := index(hay, needle, from); ok {
		return Span{Start: start, End: start + len(needle)}, true
	}
	if start, ok := index(hay, needle, 0); ok {
		return Span{Start: start, End: start + len(needle)}, true
	}
	return Span{}, false
}

// FindAll returns every non-overlapping match in document order.
func FindAll(buffer, pattern string, matchCase bool) []Span {
	if pattern == "" {
		return nil
	}
	hay := fold([]rune(buffer), matchCase)
	needle := fold([]rune(pattern), matchCase)
	var out []Span
	offset := 0
	for {
		start, ok := index(hay, needle, offset)
		if !ok {
			return out
		}
		out = append(out, Span{Start: start, End: start + len(needle)})
		offset = start + len(needle)
	}
}

// Replace returns buffer with span substituted by replacement.
func Replace(buffer string, span Span, replacement string) string {
	runes := []rune(buffer)
	start := clamp(span.Start, 0, len(runes))
	end := clamp(span.End, start, len(runes))
	out := make([]rune, 0, len(runes)-(end-start)+len(replacement))
	out = append(out, runes[:start]...)
	out = append(out, []rune(replacement)...)
	out = append(out, runes[end:]...)
	return string(out)
}

// ReplaceAll substitutes every match and reports how many were replaced.
func ReplaceAll(buffer, pattern, replacement string, matchCase bool) (string, int) {
	spans := FindAll(buffer, pattern, matchCase)
	if len(spans) == 0 {
		return buffer, 0
	}
	runes := []rune(buffer)
	repl := []rune(replacement)
	out := make([]rune, 0, len(runes))
	prev := 0
	for _, sp := range spans {
		out = append(out, runes[prev:sp.Start]...)
		out = append(out, repl...)
		prev = sp.End
	}
	out = append(out, runes[prev:]...)
	return string(out), len(spans)
}

// fold lowercases rune by rune so offsets in the folded text line up with
// the original.
func fold(rs []rune, matchCase bool) []rune {
	if matchCase {
		return rs
	}
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func index(hay, needle []rune, from int) (int, bool) {
	for i := from; i+len(needle) <= len(hay); i++ {
		if equalAt(hay, needle, i) {
			return i, true
		}
	}
	return 0, false
}

// lastIndex finds the last match that ends at or before limit.
func lastIndex(hay, needle []rune, limit int) (int, bool) {
	for i := limit - len(needle); i >= 0; i-- {
		if equalAt(hay, needle, i) {
			return i, true
		}
	}
	return 0, false
}

func equalAt(hay, needle []rune, at int) bool {
	for j, r := range needle {
		if hay[at+j] != r {
			return false
		}
	}
	return true
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
