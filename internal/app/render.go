package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qpad/internal/config"
	"github.com/kobzarvs/qpad/internal/highlight"
)

const sudoLabel = " SUDO "

type styles struct {
	text      tcell.Style
	selection tcell.Style
	status    tcell.Style
	sudo      tcell.Style
	message   tcell.Style
	errorMsg  tcell.Style
	prompt    tcell.Style
	syntax    map[string]tcell.Style
}

func newStyles(t config.Theme) styles {
	def := config.Default().Theme
	fg := parseColor(t.Foreground, parseColor(def.Foreground, tcell.ColorDefault))
	bg := parseColor(t.Background, parseColor(def.Background, tcell.ColorDefault))
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	color := func(name, fallback string) tcell.Color {
		return parseColor(name, parseColor(fallback, fg))
	}
	st := styles{
		text: base,
		selection: base.
			Foreground(color(t.SelectionForeground, def.SelectionForeground)).
			Background(color(t.SelectionBackground, def.SelectionBackground)),
		status: tcell.StyleDefault.
			Foreground(color(t.StatuslineForeground, def.StatuslineForeground)).
			Background(color(t.StatuslineBackground, def.StatuslineBackground)),
		sudo: tcell.StyleDefault.
			Foreground(color(t.SudoForeground, def.SudoForeground)).
			Background(color(t.SudoBackground, def.SudoBackground)).
			Bold(true),
		message:  base.Foreground(color(t.MessageForeground, def.MessageForeground)),
		errorMsg: base.Foreground(color(t.ErrorForeground, def.ErrorForeground)),
		prompt: tcell.StyleDefault.
			Foreground(color(t.PromptForeground, def.PromptForeground)).
			Background(color(t.PromptBackground, def.PromptBackground)),
		syntax: map[string]tcell.Style{
			highlight.KindHeading:     base.Foreground(color(t.SyntaxHeading, def.SyntaxHeading)).Bold(true),
			highlight.KindEmphasis:    base.Foreground(color(t.SyntaxEmphasis, def.SyntaxEmphasis)).Italic(true),
			highlight.KindStrong:      base.Foreground(color(t.SyntaxStrong, def.SyntaxStrong)).Bold(true),
			highlight.KindCode:        base.Foreground(color(t.SyntaxCode, def.SyntaxCode)),
			highlight.KindLink:        base.Foreground(color(t.SyntaxLink, def.SyntaxLink)).Underline(true),
			highlight.KindQuote:       base.Foreground(color(t.SyntaxQuote, def.SyntaxQuote)),
			highlight.KindList:        base.Foreground(color(t.SyntaxList, def.SyntaxList)),
			highlight.KindPunctuation: base.Foreground(color(t.SyntaxPunctuation, def.SyntaxPunctuation)),
		},
	}
	return st
}

// Render draws the text area, the status bar on the second to last row and
// the message or prompt line on the last row.
func (w *Window) Render(s tcell.Screen) {
	width, height := s.Size()
	w.height = height
	if t, ok := s.(interface{ SetTitle(string) }); ok && w.title != w.shownTitle {
		t.SetTitle(w.title)
		w.shownTitle = w.title
	}

	rows := height - 1
	if w.showStatus {
		rows--
	}
	if rows < 0 {
		rows = 0
	}
	w.scroll(rows, width)
	w.renderText(s, rows, width)
	if w.showStatus && height >= 2 {
		w.renderStatusline(s, height-2, width)
	}
	if height >= 1 {
		w.renderCommandline(s, height-1, width)
	}
	w.placeCursor(s, rows, height)
	s.Show()
}

// scroll keeps the cursor, or a row the session asked to reveal, on screen.
func (w *Window) scroll(rows, width int) {
	v := w.view
	row, col := v.RowCol(v.cursor)
	if v.reveal >= 0 {
		if v.reveal < v.top || v.reveal >= v.top+rows {
			v.top = v.reveal - rows/2
		}
		v.reveal = -1
	}
	if row < v.top {
		v.top = row
	}
	if rows > 0 && row >= v.top+rows {
		v.top = row - rows + 1
	}
	if v.top < 0 {
		v.top = 0
	}

	lines := v.Lines()
	vc := visualCol(lines[row], col, w.cfg.Editor.TabWidth)
	if vc < v.left {
		v.left = vc
	}
	if width > 0 && vc >= v.left+width {
		v.left = vc - width + 1
	}
}

func (w *Window) renderText(s tcell.Screen, rows, width int) {
	v := w.view
	lines := v.Lines()
	spans := w.hl.Lines(v.top, v.top+rows-1)
	selStart, selEnd, hasSel := v.Selection()
	tab := w.cfg.Editor.TabWidth

	off := v.Offset(v.top, 0)
	for y := 0; y < rows; y++ {
		clearLine(s, y, width, w.styles.text)
		row := v.top + y
		if row >= len(lines) {
			continue
		}
		line := lines[row]
		put := func(vc int, r rune, st tcell.Style) {
			if x := vc - v.left; x >= 0 && x < width {
				s.SetContent(x, y, r, nil, st)
			}
		}
		vc := 0
		for i, r := range line {
			st := w.styles.text
			if kind, ok := highlightKindAt(spans[row], i); ok {
				st = w.styles.syntax[kind]
			}
			if hasSel && off+i >= selStart && off+i < selEnd {
				st = w.styles.selection
			}
			if r == '\t' {
				n := tab - vc%tab
				for j := 0; j < n; j++ {
					put(vc+j, ' ', st)
				}
				vc += n
				continue
			}
			put(vc, r, st)
			vc++
		}
		// A selected newline shows as one highlighted cell.
		if hasSel && off+len(line) >= selStart && off+len(line) < selEnd {
			put(vc, ' ', w.styles.selection)
		}
		off += len(line) + 1
	}
}

func (w *Window) renderStatusline(s tcell.Screen, y, width int) {
	clearLine(s, y, width, w.styles.status)
	x := 0
	if w.sudo {
		for _, r := range sudoLabel {
			if x < width {
				s.SetContent(x, y, r, nil, w.styles.sudo)
			}
			x++
		}
	}
	if x >= width {
		return
	}

	name := w.session.Path()
	if name == "" {
		name = "Untitled"
	}
	if w.session.Dirty() {
		name += " *"
	}
	row, col := w.view.RowCol(w.view.cursor)
	words, chars := w.view.Counts()
	right := fmt.Sprintf("Ln %d, Col %d | %d words, %d chars | %s ", row+1, col+1, words, chars, w.mode.Label())
	line := composeStatusLine(" "+name, right, width-x)
	for i, r := range line {
		s.SetContent(x+i, y, r, nil, w.styles.status)
	}
}

func (w *Window) renderCommandline(s tcell.Screen, y, width int) {
	if w.cmd.active() {
		clearLine(s, y, width, w.styles.prompt)
		for i, r := range []rune(w.cmd.display()) {
			if i >= width {
				break
			}
			s.SetContent(i, y, r, nil, w.styles.prompt)
		}
		return
	}
	clearLine(s, y, width, w.styles.text)
	st := w.styles.message
	if w.messageErr {
		st = w.styles.errorMsg
	}
	for i, r := range []rune(w.message) {
		if i >= width {
			break
		}
		s.SetContent(i, y, r, nil, st)
	}
}

func (w *Window) placeCursor(s tcell.Screen, rows, height int) {
	if w.cmd.active() {
		if w.cmd.kind == promptCloseChoice {
			s.HideCursor()
			return
		}
		s.ShowCursor(len([]rune(w.cmd.display())), height-1)
		return
	}
	v := w.view
	row, col := v.RowCol(v.cursor)
	if row < v.top || row >= v.top+rows {
		s.HideCursor()
		return
	}
	vc := visualCol(v.Lines()[row], col, w.cfg.Editor.TabWidth)
	s.ShowCursor(vc-v.left, row-v.top)
}

func highlightPriority(kind string) int {
	switch kind {
	case highlight.KindCode:
		return 5
	case highlight.KindStrong, highlight.KindEmphasis:
		return 4
	case highlight.KindLink:
		return 3
	case highlight.KindHeading:
		return 2
	case highlight.KindQuote, highlight.KindList, highlight.KindPunctuation:
		return 1
	default:
		return 0
	}
}

func highlightKindAt(spans []highlight.Span, col int) (string, bool) {
	bestKind := ""
	bestPriority := 0
	for _, span := range spans {
		if col < span.StartCol || col >= span.EndCol {
			continue
		}
		priority := highlightPriority(span.Kind)
		if priority > bestPriority {
			bestPriority = priority
			bestKind = span.Kind
		}
	}
	if bestKind == "" {
		return "", false
	}
	return bestKind, true
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	line = append(line, []rune(strings.Repeat(" ", width-len(leftRunes)-len(rightRunes)))...)
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

func visualCol(line []rune, logicalCol int, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}
	logicalCol = clamp(logicalCol, 0, len(line))
	col := 0
	for i := 0; i < logicalCol; i++ {
		if line[i] == '\t' {
			col += tabWidth - (col % tabWidth)
			continue
		}
		col++
	}
	return col
}
