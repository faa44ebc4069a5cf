// Package watch monitors a directory and hands newly landed files to a
// handler, debouncing write bursts so half-copied files are not picked up.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one directory for new files with a given extension.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration

	// OnFile is invoked once per settled file.
	OnFile func(path string) error

	// OnError observes handler failures; the watch loop continues.
	OnError func(path string, err error)
}

// NewWatcher creates a watcher for *.ext files under dir.
func NewWatcher(dir, ext string) *Watcher {
	return &Watcher{
		dir:      dir,
		ext:      strings.ToLower(ext),
		debounce: 500 * time.Millisecond,
	}
}

// Run blocks until the context is cancelled, dispatching each settled file
// to OnFile.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	timers := make(map[string]*time.Timer)
	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), "."+w.ext) {
				continue
			}

			// Debounce: a copy in progress fires many write events;
			// only the last one within the window dispatches.
			path := event.Name
			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()
				w.dispatch(path)
			})
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(w.dir, err)
			}
		}
	}
}

func (w *Watcher) dispatch(path string) {
	if w.OnFile == nil {
		return
	}
	if err := w.OnFile(filepath.Clean(path)); err != nil && w.OnError != nil {
		w.OnError(path, err)
	}
}
