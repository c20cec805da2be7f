// Package watch reruns the triage pipeline whenever the registry input or
// the rules file changes. Events are debounced so editors that write a file
// several times in quick succession trigger a single rerun.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// RerunFunc is invoked after the debounce window settles.
type RerunFunc func(ctx context.Context) error

// Watcher monitors a set of files and triggers reruns on change.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	paths       map[string]bool // watched files, absolute
	rerun       RerunFunc
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging and tests.
type Stats struct {
	Events        int
	Reruns        int
	RerunFailures int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// New creates a Watcher over the given files. fsnotify watches directories,
// so each file's parent is registered and events are filtered back down to
// the files of interest.
func New(files []string, rerun RerunFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fsw,
		paths:       make(map[string]bool, len(files)),
		rerun:       rerun,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // settle rapid editor saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", zap.Error(err))
	}
}

// StatsSnapshot returns a copy of the watcher activity counters.
func (w *Watcher) StatsSnapshot() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.fireSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.paths[abs] {
		return
	}

	w.logger.Debug("change detected", zap.String("path", abs), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = abs
	w.stats.LastEventTime = time.Now()
	w.debounceMap[abs] = time.Now()
	w.mu.Unlock()
}

// fireSettled reruns the pipeline once for all events older than the
// debounce window.
func (w *Watcher) fireSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	settled := false
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled = true
		}
	}
	w.mu.Unlock()

	if !settled {
		return
	}

	if err := w.rerun(ctx); err != nil {
		w.logger.Error("rerun failed", zap.Error(err))
		w.mu.Lock()
		w.stats.RerunFailures++
		w.mu.Unlock()
		return
	}
	w.mu.Lock()
	w.stats.Reruns++
	w.mu.Unlock()
}
