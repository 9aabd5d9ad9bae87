package document

import (
	"fmt"
	"strings"
)

// Mode is the editing mode of a document. It picks the highlighting
// language and the default file extension.
type Mode int

const (
	ModePlain Mode = iota
	ModeMarkup
)

// String returns the short name used in window titles.
func (m Mode) String() string {
	if m == ModeMarkup {
		return "Markdown"
	}
	return "Plain"
}

// Label is the status bar name.
func (m Mode) Label() string {
	if m == ModeMarkup {
		return "Markdown"
	}
	return "Plain Text"
}

// DefaultName is offered when an untitled document is saved.
func (m Mode) DefaultName() string {
	if m == ModeMarkup {
		return "Untitled.md"
	}
	return "Untitled.txt"
}

// ParseMode accepts the names used on the command line and in config.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "text", "txt":
		return ModePlain, nil
	case "markup", "markdown", "md":
		return ModeMarkup, nil
	}
	return ModePlain, fmt.Errorf("unknown mode %q (want plain or markup)", s)
}
