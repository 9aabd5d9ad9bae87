package app

import "strings"

// promptKind identifies what the command line is asking for.
type promptKind int

const (
	promptNone promptKind = iota
	promptSaveLocation
	promptSecret
	promptCloseChoice
	promptOpen
	promptFind
	promptReplaceFind
	promptReplaceWith
	promptGoto
)

// commandLine is the input on the last screen row. Session prompts
// (save location, secret, close choice) are answered back into the
// session; the rest are handled by the window.
type commandLine struct {
	kind      promptKind
	label     string
	input     []rune
	masked    bool
	matchCase bool
	all       bool   // replace prompts: replace every occurrence
	pattern   string // replace prompts: the text being replaced
}

func (c *commandLine) active() bool { return c.kind != promptNone }

func (c *commandLine) open(kind promptKind, label, initial string) {
	matchCase := c.matchCase
	*c = commandLine{kind: kind, label: label, input: []rune(initial), matchCase: matchCase}
}

func (c *commandLine) close() {
	matchCase := c.matchCase
	*c = commandLine{matchCase: matchCase}
}

func (c *commandLine) text() string { return string(c.input) }

// display renders the prompt as shown on screen. Secrets are masked.
func (c *commandLine) display() string {
	in := string(c.input)
	if c.masked {
		in = strings.Repeat("*", len(c.input))
	}
	switch c.kind {
	case promptFind, promptReplaceFind, promptReplaceWith:
		flag := "[aA] "
		if c.matchCase {
			flag = "[Aa] "
		}
		return flag + c.label + in
	case promptCloseChoice:
		return c.label
	}
	return c.label + in
}

func (c *commandLine) backspace() {
	if n := len(c.input); n > 0 {
		c.input = c.input[:n-1]
	}
}
