package corpus

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

type reloadFunc func(ctx context.Context) error

func (f reloadFunc) Reload(ctx context.Context) error { return f(ctx) }

func TestFileWatcherReloadsAfterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq_data.json")
	source := NewFileSource(path)
	require.NoError(t, source.Write(context.Background(), faq.DefaultDocument()))

	reloaded := make(chan struct{}, 16)
	watcher := NewFileWatcher(path, reloadFunc(func(context.Context) error {
		reloaded <- struct{}{}
		return nil
	}), 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for observed := false; !observed; {
		select {
		case <-reloaded:
			observed = true
		case <-tick.C:
			require.NoError(t, source.Write(context.Background(), faq.DefaultDocument()))
		case <-deadline:
			t.Fatal("watcher never reloaded the corpus")
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestFileWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	watcher := NewFileWatcher(filepath.Join(dir, "faq_data.json"), nil, 0, nil)

	require.Equal(t, defaultWatchDebounce, watcher.debounce)
	require.False(t, watcher.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}))
	require.True(t, watcher.relevant(fsnotify.Event{Name: filepath.Join(dir, "faq_data.json"), Op: fsnotify.Create}))
}
