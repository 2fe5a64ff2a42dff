package faqstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// MemoryTrending counts asked questions in process memory.
type MemoryTrending struct {
	mu       sync.RWMutex
	counts   map[string]int64
	displays map[string]string
}

// NewMemoryTrending constructs an empty counter set.
func NewMemoryTrending() *MemoryTrending {
	return &MemoryTrending{
		counts:   make(map[string]int64),
		displays: make(map[string]string),
	}
}

// IncrementQuery bumps the counter for a canonical query. The first display
// string seen for it is kept.
func (s *MemoryTrending) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[canonical]++
	if _, exists := s.displays[canonical]; !exists && display != "" {
		s.displays[canonical] = display
	}
	return nil
}

// TopQueries returns the most frequent queries; limit <= 0 returns all.
func (s *MemoryTrending) TopQueries(_ context.Context, limit int) ([]faq.TrendingQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]faq.TrendingQuery, 0, len(s.counts))
	for canonical, count := range s.counts {
		display := s.displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, faq.TrendingQuery{Query: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ faq.TrendingStore = (*MemoryTrending)(nil)
