package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// tempSuffixes are partial-write markers that editors and transfer
// tools leave behind; files carrying one are never ingested.
var tempSuffixes = []string{"~", ".tmp", ".part", ".swp"}

// FeedWatcher watches an alert drop directory and reports feed files
// that were created or modified. Each file debounces independently so
// a slow upload of one file never delays another.
type FeedWatcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	config  *FeedWatcherConfig

	mu      sync.Mutex
	pending map[string]*time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// FeedWatcherConfig contains configuration for the feed watcher.
type FeedWatcherConfig struct {
	// Dir is the drop directory to watch.
	Dir string

	// DebounceInterval is the quiet period required after the last
	// write to a file before it is reported (default: 500ms).
	DebounceInterval time.Duration

	// Extensions lists the feed file extensions to ingest.
	Extensions []string
}

// DefaultFeedWatcherConfig returns the default feed watcher
// configuration.
func DefaultFeedWatcherConfig(dir string) *FeedWatcherConfig {
	return &FeedWatcherConfig{
		Dir:              dir,
		DebounceInterval: 500 * time.Millisecond,
		Extensions:       []string{".csv", ".jsonl"},
	}
}

// NewFeedWatcher creates a feed watcher for the configured directory.
func NewFeedWatcher(config *FeedWatcherConfig, logger *slog.Logger) (*FeedWatcher, error) {
	if config == nil || config.Dir == "" {
		return nil, fmt.Errorf("feed directory is required")
	}
	if config.DebounceInterval == 0 {
		config.DebounceInterval = 500 * time.Millisecond
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".csv", ".jsonl"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &FeedWatcher{
		watcher: fsw,
		logger:  logger,
		config:  config,
		pending: make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Scan returns the eligible feed files already present in the drop
// directory, sorted by path. Run mode processes these before watching
// so files dropped while the service was down are not lost.
func (w *FeedWatcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("scanning feed directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.config.Dir, entry.Name())
		if w.eligible(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch blocks processing file events until the context is cancelled
// or Stop is called. onFile runs once per settled file.
func (w *FeedWatcher) Watch(ctx context.Context, onFile func(path string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("feed watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("watching feed directory: %w", err)
	}

	w.logger.Info("feed watcher started",
		"dir", w.config.Dir,
		"extensions", strings.Join(w.config.Extensions, ","),
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("feed watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}

			w.logger.Debug("feed file event",
				"path", event.Name,
				"op", event.Op.String(),
			)
			w.schedule(event.Name, onFile)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("feed watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels pending debounced files.
func (w *FeedWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

// schedule arms (or re-arms) the debounce timer for one file.
func (w *FeedWatcher) schedule(path string, onFile func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		onFile(path)
	})
}

// eligible reports whether a path looks like a feed file: watched
// extension, not hidden, not a partial write.
func (w *FeedWatcher) eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, suffix := range tempSuffixes {
		if strings.HasSuffix(base, suffix) {
			return false
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
