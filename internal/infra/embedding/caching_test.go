package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapCache struct {
	data    map[string][]float32
	failGet bool
	failSet bool
}

func (m *mapCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	if m.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, vector []float32, _ time.Duration) error {
	if m.failSet {
		return errors.New("cache down")
	}
	m.data[key] = vector
	return nil
}

type countingEmbedder struct {
	inner *HashingEmbedder
	seen  [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.seen = append(c.seen, append([]string(nil), texts...))
	return c.inner.Embed(ctx, texts)
}

func TestCachingEmbedderSendsOnlyMisses(t *testing.T) {
	next := &countingEmbedder{inner: NewHashingEmbedder(16)}
	cache := &mapCache{data: map[string][]float32{}}
	emb := NewCachingEmbedder(next, cache, "hashing:16", time.Minute, newTestLogger())

	first, err := emb.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	second, err := emb.Embed(context.Background(), []string{"beta", "gamma", "alpha"})
	require.NoError(t, err)

	require.Equal(t, [][]string{{"alpha", "beta"}, {"gamma"}}, next.seen)
	require.Equal(t, first[1], second[0])
	require.Equal(t, first[0], second[2])
	require.Len(t, cache.data, 3)
}

func TestCachingEmbedderBypassesBrokenCache(t *testing.T) {
	next := &countingEmbedder{inner: NewHashingEmbedder(16)}
	emb := NewCachingEmbedder(next, &mapCache{failGet: true, failSet: true}, "ns", 0, newTestLogger())

	vectors, err := emb.Embed(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
}

func TestCachingEmbedderPropagatesProviderError(t *testing.T) {
	emb := NewCachingEmbedder(NewNullEmbedder("off"), &mapCache{data: map[string][]float32{}}, "ns", 0, newTestLogger())
	_, err := emb.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
}

func TestCachingEmbedderKeysIncludeNamespace(t *testing.T) {
	a := NewCachingEmbedder(nil, nil, "openai:m1", 0, nil)
	b := NewCachingEmbedder(nil, nil, "openai:m2", 0, nil)
	require.NotEqual(t, a.key("hello"), b.key("hello"))
	require.Equal(t, a.key("hello"), a.key("hello"))
}
