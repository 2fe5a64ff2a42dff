package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/semantic-faq/internal/domain/auth"
	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/config"
	"github.com/yanqian/semantic-faq/internal/infra/corpus"
	"github.com/yanqian/semantic-faq/internal/infra/embedcache"
	"github.com/yanqian/semantic-faq/internal/infra/embedding"
	"github.com/yanqian/semantic-faq/internal/infra/faqstore"
	"github.com/yanqian/semantic-faq/internal/infra/userrepo"
	"github.com/yanqian/semantic-faq/pkg/metrics"
	"github.com/yanqian/semantic-faq/pkg/util"
)

func provideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		SimilarityThreshold: cfg.FAQ.SimilarityThreshold,
		LexicalThreshold:    cfg.FAQ.LexicalThreshold,
		DefaultTopK:         cfg.FAQ.DefaultTopK,
		MaxTopK:             cfg.FAQ.MaxTopK,
		TopRecommendations:  cfg.FAQ.TopRecommendations,
		WarmupTimeout:       cfg.FAQ.WarmupTimeout,
	}
}

func provideCorpusConfig(cfg *config.Config) corpus.Config {
	store := cfg.FAQ.Corpus.ObjectStore
	return corpus.Config{
		Driver:   cfg.FAQ.Corpus.Driver,
		Path:     cfg.FAQ.Corpus.Path,
		DSN:      cfg.FAQ.Corpus.DSN,
		MaxConns: cfg.FAQ.Corpus.MaxConns,
		MinConns: cfg.FAQ.Corpus.MinConns,
		ObjectStore: corpus.ObjectStoreConfig{
			Endpoint:  store.Endpoint,
			AccessKey: store.AccessKey,
			SecretKey: store.SecretKey,
			Bucket:    store.Bucket,
			Region:    store.Region,
			Key:       store.Key,
		},
	}
}

func provideEmbeddingConfig(cfg *config.Config) embedding.Config {
	return embedding.Config{
		Provider:       cfg.Embedding.Provider,
		Model:          cfg.Embedding.Model,
		APIKey:         cfg.Embedding.APIKey,
		BaseURL:        cfg.Embedding.BaseURL,
		Dimensions:     cfg.Embedding.Dimensions,
		Encoding:       cfg.Embedding.Encoding,
		MaxBatchTokens: cfg.Embedding.MaxBatchTokens,
		RequestTimeout: cfg.Embedding.RequestTimeout,
		CacheTTL:       cfg.Embedding.Cache.TTL,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		Issuer:          cfg.Auth.Issuer,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

// provideCorpusSource falls back to the JSON file when the configured
// backend cannot be reached, so the service still boots with a corpus.
func provideCorpusSource(cfg corpus.Config, logger *slog.Logger) (faq.CorpusSource, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	source, cleanup, err := corpus.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("faq corpus source unavailable, using file source", "driver", cfg.Driver, "error", err)
		return corpus.NewFileSource(cfg.Path), func() {}
	}
	return source, cleanup
}

func provideCorpusWatcher(cfg *config.Config, engine *faq.Engine, logger *slog.Logger) *corpus.FileWatcher {
	driver := strings.ToLower(strings.TrimSpace(cfg.FAQ.Corpus.Driver))
	if !cfg.FAQ.Corpus.Watch || (driver != corpus.DriverFile && driver != "") {
		return nil
	}
	return corpus.NewFileWatcher(corpus.NewFileSource(cfg.FAQ.Corpus.Path).Path(), engine, cfg.FAQ.Corpus.WatchDebounce, logger)
}

func provideTrendingStore(cfg *config.Config, logger *slog.Logger) (faq.TrendingStore, func()) {
	if !cfg.FAQ.Valkey.Enabled {
		return faqstore.NewMemoryTrending(), func() {}
	}
	client, err := openValkey(cfg.FAQ.Valkey.Addr)
	if err != nil {
		logger.Error("valkey unavailable, falling back to memory trending store", "error", err)
		return faqstore.NewMemoryTrending(), func() {}
	}
	logger.Info("faq valkey trending store enabled", "addr", cfg.FAQ.Valkey.Addr)
	return faqstore.NewValkeyTrending(client, cfg.FAQ.Valkey.Prefix), client.Close
}

func provideVectorCache(cfg *config.Config, logger *slog.Logger) (embedding.VectorCache, func()) {
	if !cfg.Embedding.Cache.Enabled {
		return nil, func() {}
	}
	valkeyCfg := cfg.Embedding.Cache.Valkey
	if !valkeyCfg.Enabled {
		return embedcache.NewMemoryCache(), func() {}
	}
	client, err := openValkey(valkeyCfg.Addr)
	if err != nil {
		logger.Error("valkey unavailable, falling back to memory vector cache", "error", err)
		return embedcache.NewMemoryCache(), func() {}
	}
	logger.Info("embedding valkey cache enabled", "addr", valkeyCfg.Addr)
	return embedcache.NewValkeyCache(client, valkeyCfg.Prefix), client.Close
}

func provideQueryStats() *metrics.QueryStats {
	return metrics.NewQueryStats(util.NowUTC())
}

func provideUserRepository(cfg *config.Config) (auth.Repository, error) {
	editors := make([]userrepo.Editor, 0, len(cfg.Auth.Editors))
	for _, e := range cfg.Auth.Editors {
		editors = append(editors, userrepo.Editor{Email: e.Email, Name: e.Name, PasswordHash: e.PasswordHash})
	}
	repo, err := userrepo.NewMemoryRepository(editors)
	if err != nil {
		return nil, fmt.Errorf("load editors: %w", err)
	}
	return repo, nil
}

func openValkey(addr string) (valkey.Client, error) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
