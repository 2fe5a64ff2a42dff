package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/config"
	"github.com/yanqian/semantic-faq/internal/infra/corpus"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	engine  *faq.Engine
	watcher *corpus.FileWatcher
}

// NewApp is used by Wire to build the runnable app. watcher may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, engine *faq.Engine, watcher *corpus.FileWatcher) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		engine:  engine,
		watcher: watcher,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	status := a.engine.Status()
	a.logger.Info("faq engine status",
		"fallback_mode", status.FallbackMode,
		"fallback_reason", status.FallbackReason,
		"entries", status.CorpusEntries,
		"dimensions", status.Dimensions,
	)

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Run(ctx); err != nil {
				a.logger.Error("corpus watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
