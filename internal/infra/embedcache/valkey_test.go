package embedcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func TestValkeyCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		t.Skip("VALKEY_ADDR not set")
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	cache := NewValkeyCache(client, "faqtest:vec")
	t.Cleanup(func() {
		client.Do(context.Background(), client.B().Del().Key(cache.key("k")).Build())
	})

	require.NoError(t, cache.Set(context.Background(), "k", []float32{0.5, -1}, time.Minute))
	got, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float32{0.5, -1}, got)

	_, ok, err = cache.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValkeyCacheKeyPrefix(t *testing.T) {
	require.Equal(t, "faq:vec:abc", NewValkeyCache(nil, "").key("abc"))
}
