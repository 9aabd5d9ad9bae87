// Package highlight computes Markdown syntax spans with tree-sitter for
// documents in markup mode. Plain documents get no spans.
package highlight

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	tree_sitter_markdown_inline "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown-inline"

	"github.com/kobzarvs/qpad/internal/logger"
)

// Span highlights runes [StartCol, EndCol) of one line.
type Span struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Kinds produced by the queries below. The front-end maps them to theme colors.
const (
	KindHeading     = "heading"
	KindList        = "list"
	KindQuote       = "quote"
	KindCode        = "code"
	KindEmphasis    = "emphasis"
	KindStrong      = "strong"
	KindLink        = "link"
	KindPunctuation = "punctuation"
)

type Highlighter struct {
	mu          sync.Mutex
	enabled     bool
	parser      *sitter.Parser
	inline      *sitter.Parser
	blockQuery  *sitter.Query
	inlineQuery *sitter.Query
	tree        *sitter.Tree
	source      []byte
	lines       []string
}

// New compiles the Markdown queries. A query that fails to compile only
// disables its part of the highlighting.
func New() *Highlighter {
	h := &Highlighter{
		parser: sitter.NewParser(),
		inline: sitter.NewParser(),
	}
	h.parser.SetLanguage(tree_sitter_markdown.GetLanguage())
	h.inline.SetLanguage(tree_sitter_markdown_inline.GetLanguage())

	q, err := sitter.NewQuery([]byte(blockQuery), tree_sitter_markdown.GetLanguage())
	if err != nil {
		logger.Warn("markdown block query", "err", err)
	} else {
		h.blockQuery = q
	}
	q, err = sitter.NewQuery([]byte(inlineQuery), tree_sitter_markdown_inline.GetLanguage())
	if err != nil {
		logger.Warn("markdown inline query", "err", err)
	} else {
		h.inlineQuery = q
	}
	return h
}

// SetEnabled turns highlighting on for markup documents and off for plain ones.
func (h *Highlighter) SetEnabled(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = on
	if !on {
		h.tree = nil
		h.source = nil
		h.lines = nil
	}
}

func (h *Highlighter) Enabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enabled
}

// Update reparses text. It does nothing while disabled.
func (h *Highlighter) Update(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled {
		return
	}
	h.lines = strings.Split(text, "\n")
	// A final line without a newline does not close its block, so a heading
	// typed at the end of the document would parse as an error.
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	h.source = []byte(text)
	tree, err := h.parser.ParseCtx(context.Background(), nil, h.source)
	if err != nil {
		logger.Debug("markdown parse failed", "err", err)
		h.tree = nil
		return
	}
	h.tree = tree
}

// Lines returns spans for rows startLine..endLine inclusive, keyed by row.
func (h *Highlighter) Lines(startLine, endLine int) map[int][]Span {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled || h.tree == nil || startLine < 0 || endLine < startLine {
		return nil
	}
	if endLine >= len(h.lines) {
		endLine = len(h.lines) - 1
	}

	out := make(map[int][]Span)
	for row, spans := range queryHighlights(h.blockQuery, h.tree, h.source, startLine, endLine) {
		out[row] = append(out[row], h.toRunes(row, spans)...)
	}

	codeRows := collectCodeRows(h.tree.RootNode())
	for row := startLine; row <= endLine; row++ {
		line := h.lines[row]
		if line == "" {
			continue
		}
		if codeRows[row] {
			out[row] = append(out[row], Span{StartCol: 0, EndCol: utf8.RuneCountInString(line), Kind: KindCode})
			continue
		}
		if h.inlineQuery == nil {
			continue
		}
		inlineTree, err := h.inline.ParseCtx(context.Background(), nil, []byte(line))
		if err != nil || inlineTree == nil {
			continue
		}
		for _, spans := range queryHighlights(h.inlineQuery, inlineTree, []byte(line), 0, 0) {
			out[row] = append(out[row], h.toRunes(row, spans)...)
		}
	}
	return out
}

// toRunes converts byte columns from tree-sitter into rune columns and
// drops empty spans.
func (h *Highlighter) toRunes(row int, spans []Span) []Span {
	if row < 0 || row >= len(h.lines) {
		return nil
	}
	line := h.lines[row]
	out := spans[:0]
	for _, sp := range spans {
		sp.StartCol = runeCol(line, sp.StartCol)
		sp.EndCol = runeCol(line, sp.EndCol)
		if sp.EndCol > sp.StartCol {
			out = append(out, sp)
		}
	}
	return out
}

func runeCol(line string, byteCol int) int {
	if byteCol >= len(line) {
		return utf8.RuneCountInString(line)
	}
	if byteCol <= 0 {
		return 0
	}
	return utf8.RuneCountInString(line[:byteCol])
}

func queryHighlights(query *sitter.Query, tree *sitter.Tree, source []byte, startLine, endLine int) map[int][]Span {
	if query == nil || tree == nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(query, tree.RootNode())

	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			startRow, endRow := int(start.Row), int(end.Row)
			for row := startRow; row <= endRow; row++ {
				if row < startLine || row > endLine {
					continue
				}
				startCol := 0
				endCol := math.MaxInt32
				if row == startRow {
					startCol = int(start.Column)
				}
				if row == endRow {
					endCol = int(end.Column)
				}
				out[row] = append(out[row], Span{StartCol: startCol, EndCol: endCol, Kind: kind})
			}
		}
	}
	return out
}

// collectCodeRows marks the rows of fenced and indented code blocks, which
// must not be run through the inline grammar.
func collectCodeRows(root *sitter.Node) map[int]bool {
	rows := make(map[int]bool)
	if root == nil {
		return rows
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "fenced_code_block", "indented_code_block":
			start := int(n.StartPoint().Row)
			end := int(n.EndPoint().Row)
			if n.EndPoint().Column == 0 && end > start {
				end--
			}
			for r := start; r <= end; r++ {
				rows[r] = true
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return rows
}

const blockQuery = `
(atx_heading) @heading
(setext_heading) @heading
(thematic_break) @punctuation
(block_quote_marker) @quote
(list_marker_plus) @list
(list_marker_minus) @list
(list_marker_star) @list
(list_marker_dot) @list
(list_marker_parenthesis) @list
(task_list_marker_checked) @list
(task_list_marker_unchecked) @list
(link_reference_definition) @link
(pipe_table_delimiter_row) @punctuation
`

const inlineQuery = `
(code_span) @code
(emphasis) @emphasis
(strong_emphasis) @strong
(strikethrough) @punctuation
(inline_link) @link
(full_reference_link) @link
(collapsed_reference_link) @link
(shortcut_link) @link
(image) @link
(uri_autolink) @link
(email_autolink) @link
`
