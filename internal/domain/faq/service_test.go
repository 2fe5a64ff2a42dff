package faq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/semantic-faq/pkg/errors"
	"github.com/yanqian/semantic-faq/pkg/metrics"
)

type stubTrending struct {
	increments []string
	top        []TrendingQuery
	err        error
}

func (s *stubTrending) IncrementQuery(_ context.Context, canonical, _ string) error {
	s.increments = append(s.increments, canonical)
	return s.err
}

func (s *stubTrending) TopQueries(_ context.Context, _ int) ([]TrendingQuery, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.top, nil
}

func newTestService(source CorpusSource, embedder Embedder, trending TrendingStore) (Service, *metrics.QueryStats) {
	stats := metrics.NewQueryStats(time.Now())
	engine := newTestEngine(source, embedder)
	return NewService(Config{}, engine, trending, stats, newTestLogger()), stats
}

func TestAskReturnsAnswerWithShortlist(t *testing.T) {
	trending := &stubTrending{top: []TrendingQuery{{Query: "How do I upload a photo?", Count: 4}}}
	svc, stats := newTestService(&memorySource{}, newBagEmbedder(), trending)

	resp, err := svc.Ask(context.Background(), AskRequest{Question: "  How do I upload a photo?  "})
	require.NoError(t, err)
	require.Equal(t, "How do I upload a photo?", resp.Question)
	require.Equal(t, StateConfident, resp.State)
	require.Equal(t, ModeSemantic, resp.Mode)
	require.Contains(t, resp.Answer, "upload button")
	require.Len(t, resp.Similar, defaultTopK)
	require.Equal(t, trending.top, resp.Recommendations)
	require.Equal(t, []string{"how do i upload a photo"}, trending.increments)

	snap := stats.Snapshot(time.Now())
	require.Equal(t, int64(1), snap.Total)
	require.Equal(t, []metrics.OutcomeCount{{Outcome: metrics.OutcomeSemanticConfident, Count: 1}}, snap.Outcomes)
}

func TestAskValidatesInput(t *testing.T) {
	svc, stats := newTestService(&memorySource{}, newBagEmbedder(), nil)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Ask(context.Background(), AskRequest{Question: "upload", TopK: -1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Similar(context.Background(), SimilarRequest{Question: "upload", TopK: defaultMaxTopK + 1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.Equal(t, int64(3), stats.Snapshot(time.Now()).Errors)
}

func TestAskToleratesTrendingFailure(t *testing.T) {
	svc, _ := newTestService(&memorySource{}, newBagEmbedder(), &stubTrending{err: errBoom})

	resp, err := svc.Ask(context.Background(), AskRequest{Question: "What file formats are supported?"})
	require.NoError(t, err)
	require.NotNil(t, resp.Recommendations)
	require.Empty(t, resp.Recommendations)
}

func TestSimilarInFallbackModeIsEmpty(t *testing.T) {
	svc, _ := newTestService(&memorySource{}, &bagEmbedder{dims: 8, err: ErrProviderUnavailable}, nil)

	resp, err := svc.Similar(context.Background(), SimilarRequest{Question: "upload", TopK: 5})
	require.NoError(t, err)
	require.NotNil(t, resp.Results)
	require.Empty(t, resp.Results)

	ask, err := svc.Ask(context.Background(), AskRequest{Question: "how do I upload a photo"})
	require.NoError(t, err)
	require.Equal(t, ModeLexical, ask.Mode)
	require.Empty(t, ask.Similar)
}

func TestAddEntryValidatesAndPersists(t *testing.T) {
	source := &memorySource{}
	svc, _ := newTestService(source, newBagEmbedder(), nil)

	_, err := svc.AddEntry(context.Background(), AddEntryRequest{Category: "usage", Question: " ", Answer: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	resp, err := svc.AddEntry(context.Background(), AddEntryRequest{Category: "usage", Question: "Is it free?", Answer: "Yes."})
	require.NoError(t, err)
	require.False(t, resp.Rebuilt)
	require.True(t, resp.Status.Stale)
	require.Equal(t, 1, source.writes)

	resp, err = svc.AddEntry(context.Background(), AddEntryRequest{Category: "usage", Question: "Is it open?", Answer: "Yes.", Rebuild: true})
	require.NoError(t, err)
	require.True(t, resp.Rebuilt)
	require.False(t, resp.Status.Stale)
	require.Equal(t, 11, resp.Status.CachedEntries)
}

func TestAddEntrySaveFailure(t *testing.T) {
	svc, _ := newTestService(&memorySource{writeErr: errBoom}, newBagEmbedder(), nil)

	_, err := svc.AddEntry(context.Background(), AddEntryRequest{Category: "usage", Question: "q?", Answer: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeFAQSaveFailed))

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 10)
}

func TestRebuildInFallbackModeReportsProviderError(t *testing.T) {
	svc, _ := newTestService(&memorySource{}, nil, nil)

	status, err := svc.Rebuild(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeProviderError))
	require.True(t, status.FallbackMode)
}

func TestSearchAndCategories(t *testing.T) {
	svc, _ := newTestService(nil, newBagEmbedder(), nil)

	_, err := svc.Search(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	hits, err := svc.Search(context.Background(), "OCR")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	views, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []CategoryView{
		{Key: "general", Name: "General Questions", Count: 3},
		{Key: "analysis", Name: "Photo Analysis", Count: 3},
		{Key: "usage", Name: "Usage Tips", Count: 3},
	}, views)
}

func TestStatsReportsEngineAndQueries(t *testing.T) {
	svc, _ := newTestService(&memorySource{}, newBagEmbedder(), nil)
	_, err := svc.Similar(context.Background(), SimilarRequest{Question: "upload"})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, stats.Engine.CachedEntries)
	require.Equal(t, int64(1), stats.Queries.Total)
}
