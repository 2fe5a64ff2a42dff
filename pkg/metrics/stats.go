package metrics

import (
	"sort"
	"sync"
	"time"
)

// Outcome labels recorded by the FAQ service.
const (
	OutcomeSemanticConfident = "semantic_confident"
	OutcomeSemanticUncertain = "semantic_uncertain"
	OutcomeLexicalConfident  = "lexical_confident"
	OutcomeLexicalUncertain  = "lexical_uncertain"
	OutcomeSimilar           = "similar"
	OutcomeError             = "error"
)

// QueryStats accumulates request outcomes and latency in process memory.
type QueryStats struct {
	mu        sync.Mutex
	startedAt time.Time
	total     int64
	errors    int64
	totalTime time.Duration
	maxTime   time.Duration
	outcomes  map[string]int64
}

// Snapshot is a point-in-time copy of QueryStats.
type Snapshot struct {
	StartedAt     time.Time      `json:"startedAt"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Total         int64          `json:"total"`
	Errors        int64          `json:"errors"`
	SuccessRate   float64        `json:"successRate"`
	AvgLatencyMs  float64        `json:"avgLatencyMs"`
	MaxLatencyMs  int64          `json:"maxLatencyMs"`
	Outcomes      []OutcomeCount `json:"outcomes"`
}

// OutcomeCount pairs an outcome label with its count.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}

// NewQueryStats starts a collector at now.
func NewQueryStats(now time.Time) *QueryStats {
	return &QueryStats{startedAt: now, outcomes: make(map[string]int64)}
}

// Record adds one observation.
func (s *QueryStats) Record(outcome string, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if outcome == OutcomeError {
		s.errors++
	}
	s.outcomes[outcome]++
	s.totalTime += elapsed
	if elapsed > s.maxTime {
		s.maxTime = elapsed
	}
}

// Snapshot returns the aggregated counters; outcomes are sorted by label.
func (s *QueryStats) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		StartedAt:     s.startedAt,
		UptimeSeconds: int64(now.Sub(s.startedAt).Seconds()),
		Total:         s.total,
		Errors:        s.errors,
		MaxLatencyMs:  s.maxTime.Milliseconds(),
		Outcomes:      make([]OutcomeCount, 0, len(s.outcomes)),
	}
	if s.total > 0 {
		snap.SuccessRate = float64(s.total-s.errors) / float64(s.total)
		snap.AvgLatencyMs = float64(s.totalTime.Microseconds()) / float64(s.total) / 1000
	}
	for outcome, count := range s.outcomes {
		snap.Outcomes = append(snap.Outcomes, OutcomeCount{Outcome: outcome, Count: count})
	}
	sort.Slice(snap.Outcomes, func(i, j int) bool {
		return snap.Outcomes[i].Outcome < snap.Outcomes[j].Outcome
	})
	return snap
}
