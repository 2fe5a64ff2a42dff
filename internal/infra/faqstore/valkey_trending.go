package faqstore

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

const defaultTopQueries = 10

// ValkeyTrending keeps query counters in a sorted set so several service
// instances share one leaderboard.
type ValkeyTrending struct {
	client valkey.Client
	prefix string
}

// NewValkeyTrending constructs a counter set under prefix.
func NewValkeyTrending(client valkey.Client, prefix string) *ValkeyTrending {
	if prefix == "" {
		prefix = "faq"
	}
	return &ValkeyTrending{client: client, prefix: prefix}
}

func (s *ValkeyTrending) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	cmds := valkey.Commands{
		s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(canonical).Build(),
	}
	if display != "" {
		cmds = append(cmds, s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Build())
	}
	results := s.client.DoMulti(ctx, cmds...)
	if err := results[0].Error(); err != nil {
		return fmt.Errorf("increment trending query: %w", err)
	}
	return nil
}

func (s *ValkeyTrending) TopQueries(ctx context.Context, limit int) ([]faq.TrendingQuery, error) {
	if limit <= 0 {
		limit = defaultTopQueries
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	scored, err := resp.AsZScores()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []faq.TrendingQuery{}, nil
		}
		return nil, fmt.Errorf("read trending queries: %w", err)
	}
	out := make([]faq.TrendingQuery, 0, len(scored))
	if len(scored) == 0 {
		return out, nil
	}

	keys := make([]string, len(scored))
	for i, z := range scored {
		keys[i] = s.displayKey(z.Member)
	}
	displays, err := valkey.MGet(s.client, ctx, keys)
	if err != nil {
		displays = nil
	}
	for i, z := range scored {
		query := z.Member
		if msg, ok := displays[keys[i]]; ok {
			if display, derr := msg.ToString(); derr == nil && display != "" {
				query = display
			}
		}
		out = append(out, faq.TrendingQuery{Query: query, Count: int64(z.Score)})
	}
	return out, nil
}

func (s *ValkeyTrending) trendingKey() string {
	return fmt.Sprintf("%s:trending", s.prefix)
}

func (s *ValkeyTrending) displayKey(canonical string) string {
	return fmt.Sprintf("%s:display:%s", s.prefix, canonical)
}

var _ faq.TrendingStore = (*ValkeyTrending)(nil)
