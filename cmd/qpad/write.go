package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qpad/internal/app"
	"github.com/kobzarvs/qpad/internal/config"
	"github.com/kobzarvs/qpad/internal/document"
	"github.com/kobzarvs/qpad/internal/elevate"
	"github.com/kobzarvs/qpad/internal/logger"
)

// secretReader asks the user for the elevation password.
type secretReader func(prompt string, stderr io.Writer) (string, error)

var errNoTerminal = errors.New("no terminal to read the password from")

func newWriteCmd(root *rootOptions, readSecret secretReader) *cobra.Command {
	var sudo bool
	cmd := &cobra.Command{
		Use:   "write DEST",
		Short: "Save standard input to DEST, optionally through the privilege helper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(cmd, root.mode, args[0], sudo, readSecret)
		},
	}
	cmd.Flags().BoolVar(&sudo, "sudo", false, "write with elevated privileges")
	return cmd
}

func runWrite(cmd *cobra.Command, modeFlag, dest string, sudo bool, readSecret secretReader) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	mode, err := app.InitialMode(modeFlag, dest, cfg, langs)
	if err != nil {
		return err
	}
	timeout, err := cfg.Elevate.TimeoutDuration()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !utf8.Valid(data) {
		return document.ErrNotUTF8
	}

	helper := elevate.NewHelper(cfg.Elevate.Helper)
	buf := &headlessBuffer{}
	shell := &headlessShell{out: cmd.ErrOrStderr()}
	s := document.NewSession(buf, shell, elevate.NewCache(helper), elevate.NewWriter(helper, cfg.Elevate.StagingDir), mode)
	buf.onChange = s.OnTextChanged
	buf.typeText(string(data))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if sudo {
		secret, err := readSecret("[qpad] password for "+cfg.Elevate.Helper+": ", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := s.EnableElevated(ctx, secret); err != nil {
			return err
		}
	}
	if err := s.SaveAs(ctx, dest); err != nil {
		return err
	}
	if s.Pending() != document.PromptNone {
		// The session stopped at a prompt this command cannot answer.
		return fmt.Errorf("write %s: %s", dest, s.Pending())
	}
	logger.Info("headless write", "path", dest, "session", s.ID(), "elevated", sudo)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), dest)
	return nil
}

// readSecretFromTTY reads the password from the controlling terminal with
// echo off. Standard input carries the document, so it cannot be used.
func readSecretFromTTY(prompt string, stderr io.Writer) (string, error) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return "", errNoTerminal
	}
	defer tty.Close()
	if !term.IsTerminal(tty.Fd()) {
		return "", errNoTerminal
	}
	fmt.Fprint(stderr, prompt)
	pw, err := term.ReadPassword(tty.Fd())
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(string(pw), "\r\n"), nil
}

// headlessBuffer is a document.Buffer without a screen.
type headlessBuffer struct {
	text     []rune
	cursor   int
	onChange func(string)
}

func (b *headlessBuffer) Cursor() int { return b.cursor }

func (b *headlessBuffer) SetText(text string) error {
	b.text = []rune(text)
	b.cursor = 0
	b.notify()
	return nil
}

func (b *headlessBuffer) ReplaceRange(start, end int, text string) error {
	if start < 0 || end < start || end > len(b.text) {
		return fmt.Errorf("replace range %d-%d out of bounds", start, end)
	}
	out := append([]rune{}, b.text[:start]...)
	out = append(out, []rune(text)...)
	b.text = append(out, b.text[end:]...)
	b.cursor = start + utf8.RuneCountInString(text)
	b.notify()
	return nil
}

func (b *headlessBuffer) SelectRange(_, end int) { b.cursor = end }
func (b *headlessBuffer) ScrollToRange(int, int) {}

func (b *headlessBuffer) typeText(text string) {
	b.text = []rune(text)
	b.cursor = len(b.text)
	b.notify()
}

func (b *headlessBuffer) notify() {
	if b.onChange != nil {
		b.onChange(string(b.text))
	}
}

// headlessShell prints notices to stderr. Errors reach the user through the
// returned error instead.
type headlessShell struct {
	out io.Writer
}

func (h *headlessShell) SetTitle(title string)           { logger.Debug("title", "title", title) }
func (h *headlessShell) ShowError(msg string)            {}
func (h *headlessShell) ShowInfo(msg string)             { fmt.Fprintln(h.out, msg) }
func (h *headlessShell) SetElevatedIndicator(bool)       {}
func (h *headlessShell) ApplyHighlighting(document.Mode) {}
func (h *headlessShell) RequestSaveLocation(string)      {}
func (h *headlessShell) RequestSecret(string)            {}
func (h *headlessShell) RequestCloseChoice()             {}
func (h *headlessShell) Close()                          {}
