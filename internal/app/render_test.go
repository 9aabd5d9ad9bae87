package app

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qpad/internal/document"
	"github.com/kobzarvs/qpad/internal/highlight"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return b.String()
}

func TestRenderStatuslineAndCommandline(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.typeText("one two\nx")
	s := newTestScreen(t, 60, 5)
	f.win.Render(s)

	if got := screenRow(s, 0); !strings.HasPrefix(got, "one two") {
		t.Fatalf("row 0 = %q", got)
	}
	status := screenRow(s, 3)
	for _, want := range []string{"Untitled *", "Ln 2, Col 2", "3 words, 9 chars", "Plain Text"} {
		if !strings.Contains(status, want) {
			t.Fatalf("status line %q missing %q", status, want)
		}
	}
	if got := strings.TrimSpace(screenRow(s, 4)); got != "" {
		t.Fatalf("idle command line = %q, want blank", got)
	}
}

func TestRenderHiddenStatusbar(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.key(tcell.KeyCtrlB)
	f.typeText("a\nb\nc\nd")
	s := newTestScreen(t, 20, 5)
	f.win.Render(s)
	if got := screenRow(s, 3); !strings.HasPrefix(got, "d") {
		t.Fatalf("row 3 = %q, want text when status bar hidden", got)
	}
}

func TestRenderSecretPromptMasked(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.key(tcell.KeyCtrlE)
	f.typeText("abc")
	s := newTestScreen(t, 60, 5)
	f.win.Render(s)
	got := screenRow(s, 4)
	if strings.Contains(got, "abc") || !strings.Contains(got, "***") {
		t.Fatalf("prompt row = %q, want masked input", got)
	}
	if !strings.HasPrefix(got, "Enter your password") {
		t.Fatalf("prompt row = %q, want reason", got)
	}
}

func TestRenderSudoIndicator(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.key(tcell.KeyCtrlE)
	f.typeText("secret")
	f.key(tcell.KeyEnter)
	s := newTestScreen(t, 60, 5)
	f.win.Render(s)
	if got := screenRow(s, 3); !strings.HasPrefix(got, sudoLabel) {
		t.Fatalf("status line = %q, want sudo label first", got)
	}
}

func TestRenderScrollsToCursor(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.typeText("1\n2\n3\n4\n5\n6\n7")
	s := newTestScreen(t, 20, 5)
	f.win.Render(s)
	if got := screenRow(s, 2); !strings.HasPrefix(got, "7") {
		t.Fatalf("last text row = %q, want cursor line", got)
	}
	if f.win.view.top != 4 {
		t.Fatalf("top = %d, want 4", f.win.view.top)
	}
}

func TestRenderTabs(t *testing.T) {
	f := newFixture(t, document.ModePlain)
	f.typeText("a\tb")
	s := newTestScreen(t, 20, 5)
	f.win.Render(s)
	if got := screenRow(s, 0); !strings.HasPrefix(got, "a   b") {
		t.Fatalf("row 0 = %q, want tab expanded to width 4", got)
	}
}

func TestRenderMarkdownHighlight(t *testing.T) {
	f := newFixture(t, document.ModeMarkup)
	f.typeText("# Title")
	s := newTestScreen(t, 20, 5)
	f.win.Render(s)
	cells, _, _ := s.GetContents()
	want := f.win.styles.syntax[highlight.KindHeading]
	if cells[2].Style != want {
		t.Fatalf("heading cell style = %v, want heading style", cells[2].Style)
	}
}

func TestComposeStatusLine(t *testing.T) {
	if got := string(composeStatusLine("left", "right", 12)); got != "left   right" {
		t.Fatalf("composeStatusLine = %q", got)
	}
	if got := string(composeStatusLine("left", "right", 7)); got != "leright" {
		t.Fatalf("composeStatusLine truncated = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	if got := parseColor("#102030", tcell.ColorRed); got != tcell.NewRGBColor(0x10, 0x20, 0x30) {
		t.Fatalf("hex color = %v", got)
	}
	if got := parseColor("nope", tcell.ColorRed); got != tcell.ColorRed {
		t.Fatalf("unknown color = %v, want fallback", got)
	}
	if got := parseColor("default", tcell.ColorRed); got != tcell.ColorDefault {
		t.Fatalf("default color = %v", got)
	}
}
