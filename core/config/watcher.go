package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcherDebounce absorbs the burst of events a single save (editors
// often write-then-rename) produces into one callback per settled
// path.
const watcherDebounce = 500 * time.Millisecond

// Watcher watches a fixed set of paths (files or directories) and
// invokes onChange once per path after its events have settled,
// giving the skills directory and the persona override file hot
// reload without a daemon restart.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)

	mu       sync.Mutex
	debounce map[string]time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher builds a Watcher that calls onChange for every settled
// change under any of paths. Paths that don't exist yet are skipped
// with a warning rather than failing the whole watcher — an operator
// may create the skills directory or the override file later.
func NewWatcher(onChange func(path string), paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		debounce: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			slog.Warn("config watcher: skipping path (not present yet)", "path", p, "error", err)
			continue
		}
		slog.Info("config watcher: watching", "path", p)
	}

	return w, nil
}

// Start begins the watch loop in a background goroutine. It returns
// immediately; call Stop (or cancel ctx) to shut it down.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(watcherDebounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.mu.Lock()
			w.debounce[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) flushSettled() {
	now := time.Now()
	var settled []string

	w.mu.Lock()
	for path, last := range w.debounce {
		if now.Sub(last) >= watcherDebounce {
			settled = append(settled, path)
			delete(w.debounce, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.onChange(filepath.Clean(path))
	}
}

// Stop halts the watch loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}
