// Package watch reports changes made by other programs to the open file.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kobzarvs/qpad/internal/logger"
)

// Event describes a change to the watched file.
type Event struct {
	Path    string
	Removed bool
}

// Watcher follows a single file. It watches the parent directory so that
// files replaced by rename (as many editors and cp do) are still seen.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event

	mu          sync.Mutex
	path        string
	dir         string
	ignoreUntil time.Time
	now         func() time.Time
}

func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:     fw,
		events: make(chan Event, 8),
		now:    time.Now,
	}, nil
}

func (w *Watcher) Events() <-chan Event { return w.events }

// Watch switches to path. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var abs, dir string
	if path != "" {
		var err error
		abs, err = filepath.Abs(path)
		if err != nil {
			return err
		}
		dir = filepath.Dir(abs)
	}
	if dir != w.dir {
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		if dir != "" {
			if err := w.fs.Add(dir); err != nil {
				w.path, w.dir = "", ""
				return err
			}
		}
	}
	w.path, w.dir = abs, dir
	logger.Debug("watching file", "path", abs)
	return nil
}

// Ignore mutes events for d. The editor calls it around its own saves.
func (w *Watcher) Ignore(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignoreUntil = w.now().Add(d)
}

// Run delivers events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Non-fatal; keep watching.
			logger.Warn("file watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	path := w.path
	muted := w.now().Before(w.ignoreUntil)
	w.mu.Unlock()

	if path == "" || muted || filepath.Clean(ev.Name) != path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	out := Event{Path: path, Removed: ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)}
	select {
	case w.events <- out:
	default:
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
