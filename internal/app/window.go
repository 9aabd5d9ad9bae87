package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qpad/internal/config"
	"github.com/kobzarvs/qpad/internal/document"
	"github.com/kobzarvs/qpad/internal/elevate"
	"github.com/kobzarvs/qpad/internal/highlight"
	"github.com/kobzarvs/qpad/internal/logger"
	"github.com/kobzarvs/qpad/internal/watch"
)

// saveMute is how long file watcher events are ignored after the window
// writes the file itself.
const saveMute = time.Second

// Watcher follows the file of the open document.
type Watcher interface {
	Watch(path string) error
	Ignore(d time.Duration)
}

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

type nopWatcher struct{}

func (nopWatcher) Watch(string) error   { return nil }
func (nopWatcher) Ignore(time.Duration) {}

// Deps overrides the collaborators a Window builds by default.
type Deps struct {
	Cache     *elevate.Cache
	Writer    document.Writer
	Watcher   Watcher
	Clipboard Clipboard
	Languages config.Languages
	Now       func() time.Time
}

// Window is the terminal shell around one document session. It implements
// document.Shell and owns the TextView the session drives.
type Window struct {
	cfg       config.Config
	keymap    map[string]string
	languages config.Languages
	view      *TextView
	session   *document.Session
	hl        *highlight.Highlighter
	watcher   Watcher
	clip      Clipboard
	timeout   time.Duration
	now       func() time.Time
	styles    styles

	cmd        commandLine
	title      string
	shownTitle string
	message    string
	messageErr bool
	sudo       bool
	mode       document.Mode
	showStatus bool
	closed     bool
	watched    string
	confirm    string // command waiting for a second press to drop unsaved changes
	height     int
}

func NewWindow(cfg config.Config, mode document.Mode, deps Deps) (*Window, error) {
	timeout, err := cfg.Elevate.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	helper := elevate.NewHelper(cfg.Elevate.Helper)
	if deps.Cache == nil {
		deps.Cache = elevate.NewCache(helper)
	}
	if deps.Writer == nil {
		deps.Writer = elevate.NewWriter(helper, cfg.Elevate.StagingDir)
	}
	if deps.Watcher == nil {
		deps.Watcher = nopWatcher{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = systemClipboard{}
	}
	if len(deps.Languages.Languages) == 0 {
		deps.Languages = config.DefaultLanguages()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Editor.TabWidth < 1 {
		cfg.Editor.TabWidth = 4
	}
	if cfg.Editor.DateFormat == "" {
		cfg.Editor.DateFormat = config.Default().Editor.DateFormat
	}

	w := &Window{
		cfg:        cfg,
		keymap:     cfg.Keymap,
		languages:  deps.Languages,
		view:       NewTextView(),
		hl:         highlight.New(),
		watcher:    deps.Watcher,
		clip:       deps.Clipboard,
		timeout:    timeout,
		now:        deps.Now,
		styles:     newStyles(cfg.Theme),
		showStatus: cfg.Editor.StatusBar(),
		height:     24,
	}
	w.view.onChange = w.textChanged
	w.session = document.NewSession(w.view, w, deps.Cache, deps.Writer, mode)
	return w, nil
}

func (w *Window) Session() *document.Session { return w.session }
func (w *Window) View() *TextView            { return w.view }
func (w *Window) Closed() bool               { return w.closed }

func (w *Window) textChanged(text string) {
	if w.session != nil {
		w.session.OnTextChanged(text)
	}
	w.hl.Update(text)
}

// document.Shell

func (w *Window) SetTitle(title string) { w.title = title }

func (w *Window) ShowError(msg string) {
	w.message, w.messageErr = msg, true
}

func (w *Window) ShowInfo(msg string) {
	w.message, w.messageErr = msg, false
}

func (w *Window) SetElevatedIndicator(visible bool) { w.sudo = visible }

func (w *Window) ApplyHighlighting(mode document.Mode) {
	w.mode = mode
	w.hl.SetEnabled(mode == document.ModeMarkup)
	w.hl.Update(w.view.Text())
}

func (w *Window) RequestSaveLocation(defaultName string) {
	w.cmd.open(promptSaveLocation, "Save as: ", defaultName)
}

func (w *Window) RequestSecret(reason string) {
	w.cmd.open(promptSecret, reason+" ", "")
	w.cmd.masked = true
}

func (w *Window) RequestCloseChoice() {
	w.cmd.open(promptCloseChoice, "Save changes before closing? (s)ave, (d)iscard, (c)ancel", "")
}

func (w *Window) Close() { w.closed = true }

// Open loads path at startup. A path that does not exist yet becomes the
// save target of an empty document.
func (w *Window) Open(path string) error {
	defer w.syncWatch()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return w.session.Load(path, "")
	}
	return w.session.Open(path)
}

// ExternalChange reports a change another program made to the open file.
func (w *Window) ExternalChange(ev watch.Event) {
	if w.watched == "" {
		return
	}
	if abs, err := filepath.Abs(w.watched); err != nil || ev.Path != abs {
		return
	}
	if ev.Removed {
		w.ShowInfo("File was removed on disk: " + ev.Path)
		return
	}
	w.ShowInfo("File changed on disk: " + ev.Path)
}

// HandleKey processes one key press and reports whether the window closed.
func (w *Window) HandleKey(ev *tcell.EventKey) bool {
	w.message, w.messageErr = "", false
	key := keyString(ev)
	switch {
	case w.cmd.active():
		w.handlePromptKey(ev, key)
	case w.keymap[key] != "":
		w.runAction(w.keymap[key])
	default:
		w.confirm = ""
		w.handleEditKey(ev, key)
	}
	w.syncWatch()
	return w.closed
}

func (w *Window) runAction(action string) {
	if action != w.confirm {
		w.confirm = ""
	}
	var err error
	switch action {
	case "new":
		if w.discardOK(action) {
			err = w.session.New()
		}
	case "open":
		if w.discardOK(action) {
			w.cmd.open(promptOpen, "Open: ", "")
		}
	case "save":
		err = w.op(w.session.Save)
	case "save_as":
		err = w.session.RequestSaveAs()
	case "quit":
		err = w.session.RequestClose()
	case "undo":
		if !w.session.CanUndo() {
			w.ShowInfo("Nothing to undo")
			break
		}
		err = w.session.Undo()
	case "redo":
		if !w.session.CanRedo() {
			w.ShowInfo("Nothing to redo")
			break
		}
		err = w.session.Redo()
	case "find":
		w.openFind(promptFind, "Find: ")
	case "find_next":
		if w.session.FindState().Pattern == "" {
			w.openFind(promptFind, "Find: ")
			break
		}
		w.session.FindNext()
	case "find_previous":
		if w.session.FindState().Pattern == "" {
			w.openFind(promptFind, "Find: ")
			break
		}
		w.session.FindPrevious()
	case "replace":
		w.openFind(promptReplaceFind, "Replace: ")
	case "replace_all":
		w.openFind(promptReplaceFind, "Replace all: ")
		w.cmd.all = true
	case "goto_line":
		w.cmd.open(promptGoto, "Go to line: ", "")
	case "insert_datetime":
		w.view.Insert(w.now().Format(w.cfg.Editor.DateFormat))
	case "cut":
		if w.copySelection() {
			w.view.DeleteSelection()
		}
	case "copy":
		w.copySelection()
	case "paste":
		w.paste()
	case "select_all":
		w.view.SelectAll()
	case "toggle_sudo":
		err = w.session.RequestElevated(!w.session.Elevated())
	case "toggle_mode":
		next := document.ModeMarkup
		if w.session.Mode() == document.ModeMarkup {
			next = document.ModePlain
		}
		err = w.session.SetMode(next)
	case "toggle_status_bar":
		w.showStatus = !w.showStatus
	default:
		w.ShowError("Unknown command: " + action)
	}
	if err != nil {
		// The session has already reported it.
		logger.Debug("command failed", "action", action, "err", err)
	}
}

// op runs a session operation that may invoke the privilege helper.
func (w *Window) op(fn func(ctx context.Context) error) error {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	w.watcher.Ignore(saveMute)
	return fn(ctx)
}

// discardOK asks for a second press before dropping unsaved changes.
func (w *Window) discardOK(action string) bool {
	if !w.session.Dirty() || w.confirm == action {
		w.confirm = ""
		return true
	}
	w.confirm = action
	w.ShowInfo("Unsaved changes will be lost. Repeat the command to continue.")
	return false
}

func (w *Window) openFind(kind promptKind, label string) {
	st := w.session.FindState()
	w.cmd.open(kind, label, st.Pattern)
	w.cmd.matchCase = st.MatchCase
}

func (w *Window) copySelection() bool {
	text := w.view.SelectedText()
	if text == "" {
		return false
	}
	if err := w.clip.WriteAll(text); err != nil {
		w.ShowError("Clipboard unavailable: " + err.Error())
		return false
	}
	return true
}

func (w *Window) paste() {
	text, err := w.clip.ReadAll()
	if err != nil {
		w.ShowError("Clipboard unavailable: " + err.Error())
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text != "" {
		w.view.Insert(text)
	}
}

func (w *Window) handlePromptKey(ev *tcell.EventKey, key string) {
	if w.cmd.kind == promptCloseChoice {
		w.handleCloseChoice(ev, key)
		return
	}
	switch key {
	case "esc":
		w.cancelPrompt()
	case "enter":
		w.submitPrompt()
	case "backspace":
		w.cmd.backspace()
	case "alt+c":
		w.cmd.matchCase = !w.cmd.matchCase
	default:
		if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) == 0 {
			w.cmd.input = append(w.cmd.input, ev.Rune())
		}
	}
}

func (w *Window) handleCloseChoice(ev *tcell.EventKey, key string) {
	choice := document.CloseCancel
	switch {
	case key == "esc":
	case ev.Key() == tcell.KeyRune:
		switch ev.Rune() {
		case 's', 'S':
			choice = document.CloseSave
		case 'd', 'D':
			choice = document.CloseDiscard
		case 'c', 'C':
		default:
			return
		}
	default:
		return
	}
	w.cmd.close()
	err := w.op(func(ctx context.Context) error {
		return w.session.ResolveClose(ctx, choice)
	})
	if err != nil {
		logger.Debug("close failed", "err", err)
	}
}

func (w *Window) cancelPrompt() {
	kind := w.cmd.kind
	w.cmd.close()
	switch kind {
	case promptSaveLocation, promptSecret:
		if err := w.session.CancelPrompt(); err != nil {
			logger.Debug("prompt cancelled", "err", err)
		}
	}
}

// submitPrompt closes the command line before calling into the session,
// which may open the next prompt.
func (w *Window) submitPrompt() {
	c := w.cmd
	text := c.text()
	w.cmd.close()

	var err error
	switch c.kind {
	case promptSaveLocation:
		err = w.op(func(ctx context.Context) error { return w.session.SaveAs(ctx, text) })
	case promptSecret:
		err = w.op(func(ctx context.Context) error { return w.session.SubmitSecret(ctx, text) })
	case promptOpen:
		w.openPath(strings.TrimSpace(text))
	case promptFind:
		w.session.Find(text, c.matchCase)
	case promptReplaceFind:
		if text == "" {
			return
		}
		w.cmd.open(promptReplaceWith, "With: ", "")
		w.cmd.pattern, w.cmd.all, w.cmd.matchCase = text, c.all, c.matchCase
	case promptReplaceWith:
		if c.all {
			_, err = w.session.ReplaceAll(c.pattern, text, c.matchCase)
		} else {
			_, err = w.session.Replace(c.pattern, text, c.matchCase)
		}
	case promptGoto:
		n, convErr := strconv.Atoi(strings.TrimSpace(text))
		if convErr != nil {
			w.ShowError("Invalid line number: " + text)
			return
		}
		w.view.GotoLine(n)
	}
	if err != nil {
		logger.Debug("prompt failed", "prompt", int(c.kind), "err", err)
	}
}

// openPath opens path, first switching an empty document to the mode the
// file type asks for.
func (w *Window) openPath(path string) {
	if path == "" {
		return
	}
	if w.session.Text() == "" {
		name := w.languages.ModeFor(path, w.session.Mode().String())
		if m, err := document.ParseMode(name); err == nil {
			_ = w.session.SetMode(m)
		}
	}
	if err := w.session.Open(path); err != nil {
		logger.Debug("open failed", "path", path, "err", err)
	}
}

func (w *Window) handleEditKey(ev *tcell.EventKey, key string) {
	extend := strings.HasPrefix(key, "shift+") || strings.HasPrefix(key, "ctrl+shift+")
	name := strings.TrimPrefix(key, "shift+")
	if rest, ok := strings.CutPrefix(name, "ctrl+shift+"); ok {
		name = "ctrl+" + rest
	}
	page := w.height - 2
	if page < 1 {
		page = 1
	}
	switch name {
	case "left":
		w.view.MoveLeft(extend)
	case "right":
		w.view.MoveRight(extend)
	case "up":
		w.view.MoveLines(-1, extend)
	case "down":
		w.view.MoveLines(1, extend)
	case "pgup":
		w.view.MoveLines(-page, extend)
	case "pgdn":
		w.view.MoveLines(page, extend)
	case "home":
		w.view.MoveHome(extend)
	case "end":
		w.view.MoveEnd(extend)
	case "ctrl+home":
		w.view.MoveStart(extend)
	case "ctrl+end":
		w.view.MoveEndOfText(extend)
	case "enter":
		w.view.Insert("\n")
	case "tab":
		w.view.Insert("\t")
	case "backspace":
		w.view.Backspace()
	case "del":
		w.view.Delete()
	default:
		if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) == 0 {
			w.view.Insert(string(ev.Rune()))
		}
	}
}

// syncWatch points the file watcher at the current document path.
func (w *Window) syncWatch() {
	path := w.session.Path()
	if path == w.watched {
		return
	}
	if err := w.watcher.Watch(path); err != nil {
		logger.Warn("watch file", "path", path, "err", err)
	}
	w.watched = path
}
