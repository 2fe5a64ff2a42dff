package faq

import (
	"math"
	"sort"
)

// CosineSimilarity returns dot(a,b)/(|a||b|). Vectors of different length,
// empty vectors and zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

// Scores computes the similarity of query against every row of matrix.
func Scores(query []float32, matrix [][]float32) []float64 {
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		scores[i] = CosineSimilarity(query, row)
	}
	return scores
}

// Best returns the row with the highest similarity; ties go to the lowest
// index. ok is false for an empty matrix.
func Best(query []float32, matrix [][]float32) (Match, bool) {
	if len(matrix) == 0 {
		return Match{}, false
	}
	best := Match{Index: 0, Score: CosineSimilarity(query, matrix[0])}
	for i := 1; i < len(matrix); i++ {
		if score := CosineSimilarity(query, matrix[i]); score > best.Score {
			best = Match{Index: i, Score: score}
		}
	}
	return best, true
}

// TopK returns up to k matches ordered by descending score, ties broken by
// lowest index. k is clamped to the matrix size; k <= 0 yields nothing.
func TopK(query []float32, matrix [][]float32, k int) []Match {
	if k <= 0 || len(matrix) == 0 {
		return []Match{}
	}
	if k > len(matrix) {
		k = len(matrix)
	}
	scores := Scores(query, matrix)
	ranked := make([]Match, len(scores))
	for i, score := range scores {
		ranked[i] = Match{Index: i, Score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked[:k]
}
