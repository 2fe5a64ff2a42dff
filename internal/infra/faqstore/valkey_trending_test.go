package faqstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func TestValkeyTrendingKeys(t *testing.T) {
	store := NewValkeyTrending(nil, "")
	require.Equal(t, "faq:trending", store.trendingKey())
	require.Equal(t, "faq:display:upload", store.displayKey("upload"))
}

func TestValkeyTrendingRoundTrip(t *testing.T) {
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		t.Skip("VALKEY_ADDR not set")
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	store := NewValkeyTrending(client, "faqtest:"+t.Name())
	ctx := context.Background()
	t.Cleanup(func() {
		client.Do(context.Background(), client.B().Del().Key(store.trendingKey(), store.displayKey("upload")).Build())
	})

	require.NoError(t, store.IncrementQuery(ctx, "upload", "Upload?"))
	require.NoError(t, store.IncrementQuery(ctx, "upload", "upload"))

	top, err := store.TopQueries(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Upload?", top[0].Query)
	require.Equal(t, int64(2), top[0].Count)
}
