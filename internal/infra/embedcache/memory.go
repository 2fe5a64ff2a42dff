package embedcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/semantic-faq/internal/infra/embedding"
)

type vectorRecord struct {
	vector    []float32
	expiresAt time.Time
}

// MemoryCache keeps vectors in process memory with optional expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	records map[string]vectorRecord
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: make(map[string]vectorRecord), now: time.Now}
}

// Get returns a copy of the cached vector.
func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.RLock()
	record, ok := c.records[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.expired(record.expiresAt) {
		c.mu.Lock()
		delete(c.records, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]float32(nil), record.vector...), true, nil
}

// Set stores vector; ttl <= 0 keeps it until the process exits.
func (c *MemoryCache) Set(_ context.Context, key string, vector []float32, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = vectorRecord{vector: append([]float32(nil), vector...), expiresAt: exp}
	return nil
}

// Len reports the number of stored vectors, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *MemoryCache) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(c.now())
}

var _ embedding.VectorCache = (*MemoryCache)(nil)
