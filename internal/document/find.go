package document

import (
	"fmt"

	"github.com/kobzarvs/qpad/internal/search"
)

// Find stores the find parameters and searches forward from the cursor.
func (s *Session) Find(pattern string, matchCase bool) (search.Span, bool) {
	s.find = FindState{Pattern: pattern, MatchCase: matchCase}
	return s.findFrom(search.Forward)
}

// FindNext repeats the last find forward.
func (s *Session) FindNext() (search.Span, bool) {
	return s.findFrom(search.Forward)
}

// FindPrevious repeats the last find backward.
func (s *Session) FindPrevious() (search.Span, bool) {
	return s.findFrom(search.Backward)
}

func (s *Session) findFrom(dir search.Direction) (search.Span, bool) {
	if s.find.Pattern == "" {
		return search.Span{}, false
	}
	from := s.buffer.Cursor()
	// The widget leaves the cursor at the end of a selected match; searching
	// backward from there would find the same match again.
	if dir == search.Backward && s.hasMatch && from == s.lastMatch.End {
		from = s.lastMatch.Start
	}
	span, ok := search.Find(s.lastText, s.find.Pattern, from, search.Options{
		MatchCase: s.find.MatchCase,
		Direction: dir,
	})
	if !ok {
		s.hasMatch = false
		s.shell.ShowInfo(fmt.Sprintf("Not found: %s", s.find.Pattern))
		return search.Span{}, false
	}
	s.reveal(span)
	return span, true
}

func (s *Session) reveal(span search.Span) {
	s.lastMatch = span
	s.hasMatch = true
	s.buffer.SelectRange(span.Start, span.End)
	s.buffer.ScrollToRange(span.Start, span.End)
}

// Replace finds the next occurrence of pattern from the cursor and replaces
// it. The replacement is a single undo step.
func (s *Session) Replace(pattern, replacement string, matchCase bool) (bool, error) {
	s.find = FindState{Pattern: pattern, MatchCase: matchCase}
	if pattern == "" {
		return false, nil
	}
	span, ok := search.Find(s.lastText, pattern, s.buffer.Cursor(), search.Options{MatchCase: matchCase})
	if !ok {
		s.shell.ShowInfo(fmt.Sprintf("Not found: %s", pattern))
		return false, nil
	}

	if err := s.replaceRange(span, replacement); err != nil {
		return false, fmt.Errorf("replace: %w", err)
	}
	s.commit(search.Replace(s.lastText, span, replacement))

	end := span.Start + len([]rune(replacement))
	s.reveal(search.Span{Start: span.Start, End: end})
	return true, nil
}

// ReplaceAll replaces every occurrence of pattern as one undo step and
// reports how many were replaced.
func (s *Session) ReplaceAll(pattern, replacement string, matchCase bool) (int, error) {
	s.find = FindState{Pattern: pattern, MatchCase: matchCase}
	text, n := search.ReplaceAll(s.lastText, pattern, replacement, matchCase)
	if n == 0 {
		if pattern != "" {
			s.shell.ShowInfo(fmt.Sprintf("Not found: %s", pattern))
		}
		return 0, nil
	}
	if err := s.setProgrammatic(text); err != nil {
		return 0, fmt.Errorf("replace all: %w", err)
	}
	s.commit(text)
	s.hasMatch = false
	s.shell.ShowInfo(fmt.Sprintf("Replaced %d occurrence(s)", n))
	return n, nil
}

func (s *Session) replaceRange(span search.Span, text string) error {
	s.suppress = true
	defer func() { s.suppress = false }()
	return s.buffer.ReplaceRange(span.Start, span.End, text)
}

// commit records a session-made edit as one history entry.
func (s *Session) commit(text string) {
	if text == s.lastText {
		return
	}
	s.history.Record(s.lastText)
	s.lastText = text
	s.dirty = text != s.savedText
}
