package faq

import "time"

const (
	// DefaultSimilarityThreshold gates the semantic single-answer path.
	DefaultSimilarityThreshold = 0.3
	// DefaultLexicalThreshold is the minimum lexical score that is not "uncertain".
	DefaultLexicalThreshold = 0.2
	defaultTopK             = 3
	defaultMaxTopK          = 20
)

// Config holds runtime knobs for the FAQ engine and service.
type Config struct {
	SimilarityThreshold float64
	LexicalThreshold    float64
	DefaultTopK         int
	MaxTopK             int
	TopRecommendations  int
	// WarmupTimeout bounds loading and embedding the corpus at construction.
	WarmupTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.LexicalThreshold == 0 {
		c.LexicalThreshold = DefaultLexicalThreshold
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = defaultTopK
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = defaultMaxTopK
	}
	if c.DefaultTopK > c.MaxTopK {
		c.DefaultTopK = c.MaxTopK
	}
	return c
}
