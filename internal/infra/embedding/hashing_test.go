package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

func TestHashingEmbedderProducesUnitVectors(t *testing.T) {
	emb := NewHashingEmbedder(0)
	require.Equal(t, DefaultHashingDimensions, emb.Dimensions())

	vectors, err := emb.Embed(context.Background(), []string{"How do I upload a photo?", "???", ""})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		require.Len(t, v, DefaultHashingDimensions)
	}
	require.InDelta(t, 1.0, norm(vectors[0]), 1e-5)
	require.Zero(t, norm(vectors[1]))
	require.Zero(t, norm(vectors[2]))
}

func TestHashingEmbedderIsDeterministic(t *testing.T) {
	a, err := NewHashingEmbedder(64).Embed(context.Background(), []string{"What file formats are supported?"})
	require.NoError(t, err)
	b, err := NewHashingEmbedder(64).Embed(context.Background(), []string{"what FILE formats are supported"})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestHashingEmbedderRanksSimilarWordingHigher(t *testing.T) {
	emb := NewHashingEmbedder(512)
	vectors, err := emb.Embed(context.Background(), []string{
		"How do I upload photos?",
		"How do I upload a photo?",
		"Can you compare multiple images?",
	})
	require.NoError(t, err)

	close := faq.CosineSimilarity(vectors[0], vectors[1])
	far := faq.CosineSimilarity(vectors[0], vectors[2])
	require.Greater(t, close, far)
	require.Greater(t, close, faq.DefaultSimilarityThreshold)
}

func TestHashingEmbedderHonoursCancellation(t *testing.T) {
	ctx, cancel := contextWithCancel(t)
	cancel()
	_, err := NewHashingEmbedder(8).Embed(ctx, []string{"a"})
	require.Error(t, err)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
