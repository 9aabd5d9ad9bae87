// Package app is the terminal front-end: a tcell screen around one
// document session.
package app

import (
	"context"
	"runtime"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qpad/internal/config"
	"github.com/kobzarvs/qpad/internal/document"
	"github.com/kobzarvs/qpad/internal/logger"
	"github.com/kobzarvs/qpad/internal/watch"
)

type Options struct {
	Path string
	// Mode is "plain" or "markup". Empty picks the mode from the file type,
	// then from the config default.
	Mode string
}

// App is the top-level runtime for qpad.
type App struct {
	opts Options
}

func New(opts Options) *App {
	return &App{opts: opts}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	mode, err := InitialMode(a.opts.Mode, a.opts.Path, cfg, langs)
	if err != nil {
		return err
	}

	watcher, err := watch.New()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	win, err := NewWindow(cfg, mode, Deps{Watcher: watcher, Languages: langs})
	if err != nil {
		return err
	}
	if a.opts.Path != "" {
		if err := win.Open(a.opts.Path); err != nil {
			return err
		}
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("file watcher stopped", "err", err)
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-watcher.Events():
				_ = s.PostEvent(tcell.NewEventInterrupt(ev))
			}
		}
	}()

	logger.Info("qpad started", "path", a.opts.Path, "mode", mode.String())
	win.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if win.HandleKey(ev) {
				logger.Info("qpad closed", "session", win.Session().ID())
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			if change, ok := ev.Data().(watch.Event); ok {
				win.ExternalChange(change)
			}
		}
		win.Render(s)
	}
}

// InitialMode resolves the starting mode: an explicit flag wins, then the
// file type of path, then the configured default.
func InitialMode(flag, path string, cfg config.Config, langs config.Languages) (document.Mode, error) {
	if flag != "" {
		return document.ParseMode(flag)
	}
	return document.ParseMode(langs.ModeFor(path, cfg.Editor.DefaultMode))
}
