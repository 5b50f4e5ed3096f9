package reload

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// defaultPollInterval is how often the watcher stats the config file.
const defaultPollInterval = 5 * time.Second

// ReloadFunc is invoked when the watched file changes.
type ReloadFunc func(ctx context.Context) error

// Watcher polls the config file's modification time and triggers a
// reload when it moves forward. Polling behaves the same across
// platforms and across editors that replace the file instead of
// rewriting it.
type Watcher struct {
	path     string
	interval time.Duration
	reload   ReloadFunc
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// NewWatcher creates a watcher for path that invokes reload on change.
// A non-positive interval selects the default of 5 seconds.
func NewWatcher(path string, interval time.Duration, reload ReloadFunc, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		interval: interval,
		reload:   reload,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling in a background goroutine. Polling ends when
// ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.poll(ctx)
	})
}

// Stop halts polling and waits for the poll goroutine to exit. Safe to
// call more than once, and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if w.started.Load() {
		<-w.done
	}
}

func (w *Watcher) poll(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.modTime()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			current := w.modTime()
			if current.IsZero() || !current.After(last) {
				continue
			}
			last = current
			w.logger.Info("config file changed", "path", w.path)
			if err := w.reload(ctx); err != nil {
				w.logger.Error("reload failed", "path", w.path, "error", err)
			}
		}
	}
}

// modTime returns the file's modification time, or the zero time when
// the file is missing or unreadable. A vanished file (an editor mid
// rename) is skipped rather than treated as a change.
func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
