package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 500 * time.Millisecond

// Reloader re-reads the corpus after it changed on disk.
type Reloader interface {
	Reload(ctx context.Context) error
}

// FileWatcher reloads the corpus whenever the JSON file is replaced or
// written by another process. Editors writing through the API trigger it
// as well; the reload is a no-op when the content did not change.
type FileWatcher struct {
	path     string
	reloader Reloader
	debounce time.Duration
	logger   *slog.Logger
}

// NewFileWatcher builds a watcher for path.
func NewFileWatcher(path string, reloader Reloader, debounce time.Duration, logger *slog.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		reloader: reloader,
		debounce: debounce,
		logger:   logger.With("component", "corpus.watcher"),
	}
}

// Run watches until ctx is cancelled. The parent directory is watched so
// atomic rename-based writes are observed.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching corpus file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("corpus watcher error", "error", err)
		case <-timer.C:
			if err := w.reloader.Reload(ctx); err != nil {
				w.logger.Warn("corpus reload failed", "error", err)
			}
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
