package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashingDimensions is used when no dimension is configured.
const DefaultHashingDimensions = 256

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

// HashingEmbedder is a local model: words and character trigrams are
// feature-hashed into a fixed number of signed buckets and L2-normalized.
// Texts sharing vocabulary land close together; no network is involved.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder constructs the embedder.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Dimensions reports the vector length.
func (e *HashingEmbedder) Dimensions() int {
	return e.dims
}

// Embed converts each text into a unit vector. Text without letters or
// digits maps to the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *HashingEmbedder) vector(text string) []float32 {
	acc := make([]float64, e.dims)
	for _, word := range tokenize(text) {
		e.add(acc, "w:"+word, wordWeight)
		padded := []rune("^" + word + "$")
		for j := 0; j+3 <= len(padded); j++ {
			e.add(acc, "t:"+string(padded[j:j+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, e.dims)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

func (e *HashingEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := sum % uint64(e.dims)
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
