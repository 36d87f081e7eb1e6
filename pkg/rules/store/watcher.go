package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches rule files for changes and triggers reloads.
// Rapid event bursts (editor save storms, directory syncs) are
// debounced into a single reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *WatcherConfig
	debounce *Debouncer

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig contains configuration for the rule watcher.
type WatcherConfig struct {
	// Path is the rule file or directory to watch
	Path string

	// DebounceInterval is the quiet period required before a reload
	// fires after file changes (default: 250ms)
	DebounceInterval time.Duration

	// Extensions lists the file extensions that trigger reloads
	Extensions []string

	// SkipHidden controls whether hidden files are ignored
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 250 * time.Millisecond,
		Extensions:       []string{".json", ".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewWatcher creates a rule watcher.
func NewWatcher(config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. onReload runs after each debounced change burst; a
// reload error is logged and watching continues, so a broken edit never
// takes down a running classifier.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("watching path: %w", err)
	}

	w.logger.Info("rule watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rule watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("rule watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("rule file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.Trigger(func() {
				w.logger.Info("reloading rules",
					"path", event.Name,
					"op", event.Op.String(),
				)
				if err := onReload(); err != nil {
					w.logger.Error("rule reload failed, keeping previous rule set",
						"error", err,
					)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("rule watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels any pending debounced reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

// addPath registers a file or directory tree with the watcher.
func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if w.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				return fmt.Errorf("watching directory %q: %w", p, err)
			}
			w.logger.Debug("watching directory", "path", p)
		}
		return nil
	})
}

// shouldProcessEvent filters events down to rule-file content changes.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if !w.hasValidExtension(ext) {
		return false
	}

	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

// hasValidExtension checks whether a file extension is watched.
func (w *Watcher) hasValidExtension(ext string) bool {
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// Debouncer collapses rapid event bursts: the callback runs only after
// a full quiet interval with no new triggers.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger records an event. The most recent callback fires once the
// quiet interval elapses without further triggers.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
