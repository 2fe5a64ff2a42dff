package faq

import (
	"time"

	"github.com/yanqian/semantic-faq/pkg/metrics"
)

// UncertainAnswer is returned whenever no entry matches with enough confidence.
const UncertainAnswer = "I couldn't find a specific answer to your question. Please try rephrasing or check the FAQ section for similar topics."

// Entry is a flattened corpus record. Category holds the category key.
type Entry struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Mode identifies which matcher produced an answer.
type Mode string

const (
	// ModeSemantic ranks cached embeddings by cosine similarity.
	ModeSemantic Mode = "semantic"
	// ModeLexical scores word overlap when no embedding model is usable.
	ModeLexical Mode = "lexical"
)

// Match is a ranked position in the flattened corpus.
type Match struct {
	Index int
	Score float64
}

// SimilarQuestion is one element of a ranked shortlist.
type SimilarQuestion struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// Result explains how an answer was chosen.
type Result struct {
	Answer          string  `json:"answer"`
	Mode            Mode    `json:"mode"`
	State           State   `json:"state"`
	Score           float64 `json:"score"`
	MatchedQuestion string  `json:"matchedQuestion,omitempty"`
	Category        string  `json:"category,omitempty"`
}

// CategoryView summarises a category for listings.
type CategoryView struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchHit is a substring search result.
type SearchHit struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Category       string `json:"category"`
	RelevanceScore int    `json:"relevanceScore"`
}

// Status describes the engine and its embedding cache.
type Status struct {
	FallbackMode   bool      `json:"fallbackMode"`
	FallbackReason string    `json:"fallbackReason,omitempty"`
	CorpusEntries  int       `json:"corpusEntries"`
	CachedEntries  int       `json:"cachedEntries"`
	Stale          bool      `json:"stale"`
	Dimensions     int       `json:"dimensions"`
	BuiltAt        time.Time `json:"builtAt,omitempty"`
	TotalQuestions int       `json:"totalQuestions"`
}

// TrendingQuery represents a frequently asked question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// AskRequest is the transport payload for a best-answer lookup.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

// AskResponse combines the best answer with a shortlist of related questions.
type AskResponse struct {
	Question        string            `json:"question"`
	Answer          string            `json:"answer"`
	Mode            Mode              `json:"mode"`
	State           State             `json:"state"`
	Score           float64           `json:"score"`
	MatchedQuestion string            `json:"matchedQuestion,omitempty"`
	Category        string            `json:"category,omitempty"`
	Similar         []SimilarQuestion `json:"similar"`
	Recommendations []TrendingQuery   `json:"recommendations"`
	DurationMs      int64             `json:"durationMs"`
}

// SimilarRequest asks for the top-k closest questions.
type SimilarRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

// SimilarResponse wraps a ranked shortlist.
type SimilarResponse struct {
	Question string            `json:"question"`
	Results  []SimilarQuestion `json:"results"`
}

// AddEntryRequest appends a question to a category.
type AddEntryRequest struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Rebuild  bool   `json:"rebuild"`
}

// AddEntryResponse reports what happened to the corpus and the cache.
type AddEntryResponse struct {
	Entry   Entry  `json:"entry"`
	Rebuilt bool   `json:"rebuilt"`
	Status  Status `json:"status"`
}

// StatsResponse exposes engine state and query counters.
type StatsResponse struct {
	Engine  Status           `json:"engine"`
	Queries metrics.Snapshot `json:"queries"`
}
