// Package watch notifies long-running servers when the index bundle on
// disk is replaced, so they can reload without a restart.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events an atomic bundle swap
// produces into a single notification.
const defaultDebounce = 500 * time.Millisecond

// Watcher observes an index directory and invokes a callback after the
// bundle there is replaced. Because builds swap the whole directory via
// rename, the watch is placed on the parent directory and filtered to
// events touching the bundle path.
type Watcher struct {
	dir      string
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for the index bundle at dir.
func New(dir string) *Watcher {
	return &Watcher{
		dir:      filepath.Clean(dir),
		debounce: defaultDebounce,
	}
}

// Run watches until the context is cancelled, calling onReload each
// time the bundle is swapped. It blocks; run it in a goroutine.
func (w *Watcher) Run(ctx context.Context, onReload func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.dir)); err != nil {
		return fmt.Errorf("watching index parent directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.schedule(onReload)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching index directory: %w", err)
		}
	}
}

// relevant reports whether an event signals a bundle swap: a create,
// rename, or remove of the bundle directory itself.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.dir {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}

// schedule arms the debounce timer, restarting it if already armed.
func (w *Watcher) schedule(onReload func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, onReload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
