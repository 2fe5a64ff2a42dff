package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverR2       = "r2"
)

// Config selects where the corpus is persisted.
type Config struct {
	Driver      string
	Path        string
	DSN         string
	MaxConns    int32
	MinConns    int32
	ObjectStore ObjectStoreConfig
}

// Open builds the configured source. The returned cleanup releases
// connections and is never nil.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (faq.CorpusSource, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverFile, "":
		source := NewFileSource(cfg.Path)
		logger.Info("faq corpus file source enabled", "path", source.Path())
		return source, noop, nil
	case DriverPostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		source, err := NewPostgresSource(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		logger.Info("faq corpus postgres source enabled")
		return source, pool.Close, nil
	case DriverSQLite:
		source, err := OpenSQLiteSource(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("faq corpus sqlite source enabled", "dsn", cfg.DSN)
		return source, func() { _ = source.Close() }, nil
	case DriverR2:
		source, err := NewObjectStoreSource(cfg.ObjectStore, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("faq corpus object store source enabled", "bucket", cfg.ObjectStore.Bucket, "key", source.key)
		return source, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown corpus driver %q", cfg.Driver)
	}
}

func openPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}
