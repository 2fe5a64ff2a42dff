package faq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityEdgeCases(t *testing.T) {
	require.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	require.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	require.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)

	require.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	require.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	require.Zero(t, CosineSimilarity(nil, nil))
	require.Zero(t, CosineSimilarity([]float32{float32(math.NaN()), 1}, []float32{1, 1}))
}

func TestBestPrefersLowestIndexOnTie(t *testing.T) {
	matrix := [][]float32{{0, 1}, {1, 0}, {1, 0}}
	match, ok := Best([]float32{1, 0}, matrix)
	require.True(t, ok)
	require.Equal(t, 1, match.Index)
	require.InDelta(t, 1.0, match.Score, 1e-9)

	_, ok = Best([]float32{1, 0}, nil)
	require.False(t, ok)
}

func TestTopKOrderingAndClamp(t *testing.T) {
	matrix := [][]float32{{0, 1}, {1, 0}, {1, 1}, {1, 0}}
	query := []float32{1, 0}

	all := TopK(query, matrix, 10)
	require.Len(t, all, 4)
	require.Equal(t, []int{1, 3, 2, 0}, indexes(all))
	for i := 1; i < len(all); i++ {
		require.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}

	require.Equal(t, []int{1, 3}, indexes(TopK(query, matrix, 2)))
	require.Empty(t, TopK(query, matrix, 0))
	require.Empty(t, TopK(query, matrix, -1))
	require.Empty(t, TopK(query, nil, 3))
}

func TestScoresAlignWithRows(t *testing.T) {
	scores := Scores([]float32{1, 0}, [][]float32{{1, 0}, {0, 1}})
	require.Len(t, scores, 2)
	require.InDelta(t, 1.0, scores[0], 1e-9)
	require.InDelta(t, 0.0, scores[1], 1e-9)
}

func indexes(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
