package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Its-donkey/sharebox/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts such as a large upload being written.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes in a single directory to a Hub.
type Watcher struct {
	dir      string
	hub      *Hub
	logger   *logging.Logger
	debounce time.Duration
	skip     func(name string) bool
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithSkip ignores events for names where skip returns true.
func WithSkip(skip func(name string) bool) Option {
	return func(w *Watcher) { w.skip = skip }
}

// NewWatcher builds a Watcher for dir.
func NewWatcher(dir string, hub *Hub, logger *logging.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Watcher{dir: dir, hub: hub, logger: logger, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. It returns an error only when the
// watch cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.dir, err)
	}
	w.logger.Info("watch", "watching shared folder", map[string]any{"dir": w.dir})

	var (
		timer   *time.Timer
		pending string
		fire    <-chan time.Time
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			name := filepath.Base(event.Name)
			if w.skip != nil && w.skip(name) {
				continue
			}
			pending = name
			stop()
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.logger.Debug("watch", "shared folder changed", map[string]any{"name": pending})
			w.hub.NotifyFilesChanged(pending)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch", "watcher error", map[string]any{"error": err.Error()})
		}
	}
}
