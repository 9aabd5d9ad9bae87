// Package document owns the state of one open document: its path, mode and
// dirty flag, undo history, find parameters and the elevated-save workflow.
//
// The session never blocks on the user. Operations that need an answer
// (where to save, a secret, what to do with unsaved changes) record a
// pending Prompt, ask the Shell to show it and return. The UI then calls
// SaveAs, SubmitSecret, ResolveClose or CancelPrompt to resume.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kobzarvs/qpad/internal/elevate"
	"github.com/kobzarvs/qpad/internal/history"
	"github.com/kobzarvs/qpad/internal/logger"
	"github.com/kobzarvs/qpad/internal/search"
)

// AppName prefixes every window title.
const AppName = "qpad"

// Buffer is the text widget the session drives. Positions are rune offsets.
type Buffer interface {
	Cursor() int
	SetText(text string) error
	ReplaceRange(start, end int, text string) error
	SelectRange(start, end int)
	ScrollToRange(start, end int)
}

// Shell is the window around the buffer.
type Shell interface {
	SetTitle(title string)
	ShowError(msg string)
	ShowInfo(msg string)
	SetElevatedIndicator(visible bool)
	ApplyHighlighting(mode Mode)
	RequestSaveLocation(defaultName string)
	RequestSecret(reason string)
	RequestCloseChoice()
	Close()
}

// Writer persists document text. *elevate.Writer satisfies it.
type Writer interface {
	Write(ctx context.Context, path, content string, cred *elevate.Credential) error
}

// FindState holds the last used find parameters.
type FindState struct {
	Pattern   string
	MatchCase bool
}

type Session struct {
	id     string
	buffer Buffer
	shell  Shell
	cache  *elevate.Cache
	writer Writer

	path      string
	mode      Mode
	dirty     bool
	lastText  string
	savedText string
	suppress  bool

	history   *history.History
	find      FindState
	lastMatch search.Span
	hasMatch  bool

	pending pendingPrompt
}

// NewSession creates an empty, clean session and pushes the initial title
// and highlighting to the shell.
func NewSession(buf Buffer, shell Shell, cache *elevate.Cache, w Writer, mode Mode) *Session {
	if cache == nil {
		cache = elevate.NewCache(nil)
	}
	s := &Session{
		id:      uuid.NewString(),
		buffer:  buf,
		shell:   shell,
		cache:   cache,
		writer:  w,
		mode:    mode,
		history: history.New(),
	}
	logger.Debug("session created", "session", s.id, "mode", mode.String())
	s.shell.ApplyHighlighting(mode)
	s.refreshTitle()
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Path() string         { return s.path }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) Dirty() bool          { return s.dirty }
func (s *Session) Text() string         { return s.lastText }
func (s *Session) FindState() FindState { return s.find }
func (s *Session) CanUndo() bool        { return s.history.CanUndo() }
func (s *Session) CanRedo() bool        { return s.history.CanRedo() }
func (s *Session) Pending() Prompt      { return s.pending.kind }

// Elevated reports whether elevated-save mode is on. It stays on after the
// credential expires; the next save asks for the secret again.
func (s *Session) Elevated() bool { return s.cache.Active() }

// Title renders "qpad - <path|Untitled>[ [SUDO]] [Plain|Markdown]".
func (s *Session) Title() string {
	name := s.path
	if name == "" {
		name = "Untitled"
	}
	sudo := ""
	if s.Elevated() {
		sudo = " [SUDO]"
	}
	return fmt.Sprintf("%s - %s%s [%s]", AppName, name, sudo, s.mode)
}

func (s *Session) refreshTitle() {
	s.shell.SetTitle(s.Title())
}

// OnTextChanged records a user edit. Changes made by the session itself and
// changes that leave the text as it was are ignored. The document is dirty
// exactly when its text differs from what was last loaded or saved.
func (s *Session) OnTextChanged(text string) {
	if s.suppress || text == s.lastText {
		return
	}
	s.history.Record(s.lastText)
	s.lastText = text
	s.dirty = text != s.savedText
	s.hasMatch = false
}

// setProgrammatic replaces the buffer contents without recording history.
func (s *Session) setProgrammatic(text string) error {
	s.suppress = true
	defer func() { s.suppress = false }()
	return s.buffer.SetText(text)
}

// Undo restores the previous snapshot. It is a no-op when there is nothing
// to undo.
func (s *Session) Undo() error {
	prev, ok := s.history.Undo(s.lastText)
	if !ok {
		return nil
	}
	if err := s.setProgrammatic(prev); err != nil {
		s.history.Redo(prev)
		return fmt.Errorf("undo: %w", err)
	}
	s.restored(prev)
	return nil
}

// Redo reapplies the last undone snapshot.
func (s *Session) Redo() error {
	next, ok := s.history.Redo(s.lastText)
	if !ok {
		return nil
	}
	if err := s.setProgrammatic(next); err != nil {
		s.history.Undo(next)
		return fmt.Errorf("redo: %w", err)
	}
	s.restored(next)
	return nil
}

func (s *Session) restored(text string) {
	s.lastText = text
	s.dirty = text != s.savedText
	s.hasMatch = false
}

// SetMode switches the editing mode. Only an empty document may change mode.
func (s *Session) SetMode(m Mode) error {
	if m == s.mode {
		return nil
	}
	if s.lastText != "" {
		s.shell.ShowInfo("Cannot change mode while the document has content.")
		return ErrModeLocked
	}
	s.mode = m
	logger.Info("mode changed", "session", s.id, "mode", m.String())
	s.shell.ApplyHighlighting(m)
	s.refreshTitle()
	return nil
}

// Load replaces the document with contents. History, find state and any
// elevated credential are dropped. If the buffer refuses the text the
// current document is kept.
func (s *Session) Load(path, contents string) error {
	if err := s.setProgrammatic(contents); err != nil {
		return s.fail(&LoadError{Path: path, Err: err})
	}
	s.history.Reset()
	s.lastText = contents
	s.savedText = contents
	s.path = path
	s.dirty = false
	s.find = FindState{}
	s.hasMatch = false
	s.pending = pendingPrompt{}
	s.cache.Clear()
	s.shell.SetElevatedIndicator(false)
	s.refreshTitle()
	logger.Info("document loaded", "session", s.id, "path", path, "bytes", len(contents))
	return nil
}

// Open reads path and loads it. Unreadable or non-UTF-8 files leave the
// current document untouched.
func (s *Session) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(&LoadError{Path: path, Err: err})
	}
	if !utf8.Valid(data) {
		return s.fail(&LoadError{Path: path, Err: ErrNotUTF8})
	}
	return s.Load(path, string(data))
}

// New replaces the document with an empty untitled one.
func (s *Session) New() error {
	return s.Load("", "")
}

// Save writes the document. It may stop at a save-location or secret
// prompt; the answer resumes it.
func (s *Session) Save(ctx context.Context) error {
	if s.pending.kind != PromptNone {
		return ErrPromptPending
	}
	return s.save(ctx, saveFlow{})
}

// RequestSaveAs asks for a destination even when the document has a path.
func (s *Session) RequestSaveAs() error {
	if s.pending.kind != PromptNone {
		return ErrPromptPending
	}
	s.askSaveLocation(saveFlow{})
	return nil
}

// SaveAs answers a pending save-location prompt with path. With no prompt
// outstanding it saves directly to path.
func (s *Session) SaveAs(ctx context.Context, path string) error {
	var flow saveFlow
	switch s.pending.kind {
	case PromptSaveLocation:
		flow = s.pending.flow
		s.pending = pendingPrompt{}
	case PromptNone:
	default:
		return ErrPromptPending
	}
	if path == "" {
		return s.fail(&SaveError{Kind: SaveIO, Path: path, Err: errors.New("empty file name")})
	}
	return s.saveTo(ctx, path, flow)
}

func (s *Session) save(ctx context.Context, flow saveFlow) error {
	if s.path == "" {
		s.askSaveLocation(flow)
		return nil
	}
	return s.saveTo(ctx, s.path, flow)
}

func (s *Session) askSaveLocation(flow saveFlow) {
	s.pending = pendingPrompt{kind: PromptSaveLocation, flow: flow}
	s.shell.RequestSaveLocation(s.mode.DefaultName())
}

func (s *Session) saveTo(ctx context.Context, path string, flow saveFlow) error {
	if s.cache.Active() && !s.cache.Valid(s.cache.Now()) {
		flow.path = path
		s.pending = pendingPrompt{kind: PromptSecret, purpose: secretRefresh, flow: flow}
		s.shell.RequestSecret("Sudo credentials expired. Enter your password to save.")
		return nil
	}
	return s.write(ctx, path, flow)
}

func (s *Session) write(ctx context.Context, path string, flow saveFlow) error {
	cred := s.cache.Credential()
	elevated := cred != nil
	if err := s.writer.Write(ctx, path, s.lastText, cred); err != nil {
		return s.fail(saveErrorFrom(path, err))
	}

	s.path = path
	s.savedText = s.lastText
	s.dirty = false
	s.refreshTitle()
	logger.Info("document saved", "session", s.id, "path", path, "elevated", elevated, "bytes", len(s.lastText))

	if flow.closeAfter {
		logger.Info("closing after save", "session", s.id)
		s.shell.Close()
	}
	return nil
}

func saveErrorFrom(path string, err error) *SaveError {
	var we *elevate.WriteError
	if errors.As(err, &we) {
		kind := SaveIO
		switch we.Kind {
		case elevate.WriteAuthFailed:
			kind = SaveAuthFailed
		case elevate.WriteCopyFailed:
			kind = SaveCopyFailed
		}
		return &SaveError{Kind: kind, Path: path, Err: err}
	}
	return &SaveError{Kind: SaveIO, Path: path, Err: err}
}

// fail reports err to the user and returns it.
func (s *Session) fail(err error) error {
	logger.Warn("operation failed", "session", s.id, "err", err)
	s.shell.ShowError(err.Error())
	return err
}

// RequestElevated starts enabling elevated-save mode by asking for the
// secret, or disables it right away.
func (s *Session) RequestElevated(enable bool) error {
	if !enable {
		s.DisableElevated()
		return nil
	}
	if s.pending.kind != PromptNone {
		return ErrPromptPending
	}
	s.pending = pendingPrompt{kind: PromptSecret, purpose: secretEnable}
	s.shell.RequestSecret("Enter your password to enable sudo mode.")
	return nil
}

// EnableElevated validates secret with the helper and, on success, caches
// it. On failure elevated mode stays off.
func (s *Session) EnableElevated(ctx context.Context, secret string) error {
	if !s.cache.Validate(ctx, secret) {
		logger.Warn("sudo mode rejected", "session", s.id)
		s.shell.SetElevatedIndicator(s.Elevated())
		return s.fail(ErrAuthFailed)
	}
	s.cache.Set(secret)
	s.shell.SetElevatedIndicator(true)
	s.refreshTitle()
	logger.Info("sudo mode enabled", "session", s.id, "expires", s.cache.ExpiresAt())
	return nil
}

// DisableElevated drops the credential immediately. A pending secret prompt
// is withdrawn with it; a save parked on a credential refresh is cancelled.
func (s *Session) DisableElevated() {
	p := s.pending
	if p.kind == PromptSecret {
		s.pending = pendingPrompt{}
	}
	s.cache.Clear()
	s.shell.SetElevatedIndicator(false)
	s.refreshTitle()
	s.shell.ShowInfo("Sudo mode disabled")
	logger.Info("sudo mode disabled", "session", s.id)
	if p.kind == PromptSecret && p.purpose == secretRefresh {
		_ = s.fail(&SaveError{Kind: SaveAuthCancelled, Path: p.flow.path, Err: ErrAuthCancelled})
	}
}

// SubmitSecret answers a pending secret prompt.
func (s *Session) SubmitSecret(ctx context.Context, secret string) error {
	if s.pending.kind != PromptSecret {
		return ErrNoPendingPrompt
	}
	p := s.pending
	s.pending = pendingPrompt{}

	if p.purpose == secretEnable {
		return s.EnableElevated(ctx, secret)
	}

	if !s.cache.Validate(ctx, secret) {
		logger.Warn("credential refresh rejected", "session", s.id)
		return s.fail(&SaveError{Kind: SaveAuthFailed, Path: p.flow.path, Err: ErrAuthFailed})
	}
	s.cache.Set(secret)
	return s.write(ctx, p.flow.path, p.flow)
}

// CancelPrompt declines whatever prompt is pending.
func (s *Session) CancelPrompt() error {
	p := s.pending
	s.pending = pendingPrompt{}
	switch p.kind {
	case PromptNone:
		return ErrNoPendingPrompt
	case PromptSecret:
		if p.purpose == secretEnable {
			s.shell.SetElevatedIndicator(s.Elevated())
			return s.fail(ErrAuthCancelled)
		}
		return s.fail(&SaveError{Kind: SaveAuthCancelled, Path: p.flow.path, Err: ErrAuthCancelled})
	case PromptCloseChoice:
		logger.Debug("close cancelled", "session", s.id)
	}
	return nil
}

// RequestClose closes a clean document and asks about a dirty one.
func (s *Session) RequestClose() error {
	if s.pending.kind != PromptNone {
		return ErrPromptPending
	}
	if !s.dirty {
		s.shell.Close()
		return nil
	}
	s.pending = pendingPrompt{kind: PromptCloseChoice}
	s.shell.RequestCloseChoice()
	return nil
}

// ResolveClose answers the unsaved-changes prompt. Saving closes only once
// the save succeeds; discarding clears the dirty flag so a retried close
// does not ask again.
func (s *Session) ResolveClose(ctx context.Context, choice CloseChoice) error {
	if s.pending.kind != PromptCloseChoice {
		return ErrNoPendingPrompt
	}
	s.pending = pendingPrompt{}
	logger.Info("close resolved", "session", s.id, "choice", choice.String())

	switch choice {
	case CloseSave:
		return s.save(ctx, saveFlow{closeAfter: true})
	case CloseDiscard:
		s.dirty = false
		s.shell.Close()
	}
	return nil
}
