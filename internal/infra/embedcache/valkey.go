package embedcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/semantic-faq/internal/infra/embedding"
)

// ValkeyCache shares vectors between instances through Valkey.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache storing keys under prefix.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "faq:vec"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var vector []float32
	if err := json.Unmarshal([]byte(payload), &vector); err != nil {
		return nil, false, fmt.Errorf("decode cached vector: %w", err)
	}
	return vector, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error {
	payload, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(key string) string {
	return c.prefix + ":" + key
}

var _ embedding.VectorCache = (*ValkeyCache)(nil)
