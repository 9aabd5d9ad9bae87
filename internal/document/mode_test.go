package document

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":         ModePlain,
		"plain":    ModePlain,
		"Markup":   ModeMarkup,
		"markdown": ModeMarkup,
		" md ":     ModeMarkup,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("html"); err == nil {
		t.Fatalf("ParseMode(html) error = nil")
	}
}

func TestModeNames(t *testing.T) {
	if ModePlain.Label() != "Plain Text" || ModeMarkup.Label() != "Markdown" {
		t.Fatalf("labels = %q/%q", ModePlain.Label(), ModeMarkup.Label())
	}
	if ModePlain.DefaultName() != "Untitled.txt" || ModeMarkup.DefaultName() != "Untitled.md" {
		t.Fatalf("default names = %q/%q", ModePlain.DefaultName(), ModeMarkup.DefaultName())
	}
}

func TestSaveErrorIs(t *testing.T) {
	err := error(&SaveError{Kind: SaveAuthFailed, Path: "/etc/x"})
	if !errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrAuthCancelled) {
		t.Fatalf("SaveAuthFailed matching wrong sentinels")
	}
	if errors.Is(&SaveError{Kind: SaveIO}, ErrAuthFailed) {
		t.Fatalf("SaveIO matched ErrAuthFailed")
	}
	if got := err.Error(); got != "save /etc/x: authentication failed" {
		t.Fatalf("Error() = %q", got)
	}
}
