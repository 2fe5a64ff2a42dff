package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// VectorCache stores embeddings by key.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error
}

// CachingEmbedder serves repeated texts from a VectorCache and only sends
// misses to the wrapped provider. Cache failures are logged and bypassed.
type CachingEmbedder struct {
	next      faq.Embedder
	cache     VectorCache
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewCachingEmbedder wraps next. namespace should identify the model so
// vectors of different models never mix.
func NewCachingEmbedder(next faq.Embedder, cache VectorCache, namespace string, ttl time.Duration, logger *slog.Logger) *CachingEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingEmbedder{
		next:      next,
		cache:     cache,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.With("component", "embedding.cache"),
	}
}

func (c *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		keys[i] = c.key(text)
		vec, ok, err := c.cache.Get(ctx, keys[i])
		if err != nil {
			c.logger.Warn("vector cache read failed", "error", err)
		}
		if ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embedding result count mismatch: expected %d, got %d", len(missTexts), len(vectors))
	}
	for j, vec := range vectors {
		i := missIdx[j]
		out[i] = vec
		if err := c.cache.Set(ctx, keys[i], vec, c.ttl); err != nil {
			c.logger.Warn("vector cache write failed", "error", err)
		}
	}
	return out, nil
}

func (c *CachingEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.namespace + ":" + hex.EncodeToString(sum[:])
}
