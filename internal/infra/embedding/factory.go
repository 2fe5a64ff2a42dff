package embedding

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// Provider names accepted by New.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
	ProviderNone    = "none"
)

// Config selects and configures the embedding provider.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
	// Encoding is the tiktoken encoding used for batching OpenAI requests.
	Encoding       string
	MaxBatchTokens int
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// New builds the configured provider, wrapped by cache when one is given.
// Construction failures yield a NullEmbedder so the engine starts in
// lexical fallback mode instead of refusing to boot.
func New(cfg Config, cache VectorCache, logger *slog.Logger) faq.Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	provider, namespace, err := build(cfg, logger)
	if err != nil {
		logger.Warn("embedding provider unavailable", "provider", cfg.Provider, "error", err)
		return NewNullEmbedder(err.Error())
	}
	if cache == nil {
		return provider
	}
	return NewCachingEmbedder(provider, cache, namespace, cfg.CacheTTL, logger)
}

func build(cfg Config, logger *slog.Logger) (faq.Embedder, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderHashing:
		emb := NewHashingEmbedder(cfg.Dimensions)
		return emb, fmt.Sprintf("hashing:%d", emb.Dimensions()), nil
	case ProviderOpenAI:
		emb, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Dimensions:     cfg.Dimensions,
			Encoding:       cfg.Encoding,
			MaxBatchTokens: cfg.MaxBatchTokens,
			RequestTimeout: cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return emb, fmt.Sprintf("openai:%s:%d", emb.model, cfg.Dimensions), nil
	case ProviderNone, "":
		return nil, "", errors.New("embedding provider disabled")
	default:
		return nil, "", fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
