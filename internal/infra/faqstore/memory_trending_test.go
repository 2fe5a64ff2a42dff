package faqstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

func TestMemoryTrendingOrdersByCount(t *testing.T) {
	store := NewMemoryTrending()
	ctx := context.Background()

	require.NoError(t, store.IncrementQuery(ctx, "how do i upload a photo", "How do I upload a photo?"))
	require.NoError(t, store.IncrementQuery(ctx, "how do i upload a photo", "how do i upload a photo"))
	require.NoError(t, store.IncrementQuery(ctx, "what formats", "What formats?"))
	require.NoError(t, store.IncrementQuery(ctx, "", "ignored"))

	top, err := store.TopQueries(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{
		{Query: "How do I upload a photo?", Count: 2},
		{Query: "What formats?", Count: 1},
	}, top)

	top, err = store.TopQueries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestMemoryTrendingBreaksTiesByQuery(t *testing.T) {
	store := NewMemoryTrending()
	ctx := context.Background()
	require.NoError(t, store.IncrementQuery(ctx, "b", ""))
	require.NoError(t, store.IncrementQuery(ctx, "a", ""))

	top, err := store.TopQueries(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{{Query: "a", Count: 1}, {Query: "b", Count: 1}}, top)
}
