package faq

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/semantic-faq/pkg/errors"
	"github.com/yanqian/semantic-faq/pkg/metrics"
	"github.com/yanqian/semantic-faq/pkg/util"
)

// Service exposes the FAQ engine to transports.
type Service interface {
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	Similar(ctx context.Context, req SimilarRequest) (SimilarResponse, error)
	List(ctx context.Context) ([]Entry, error)
	Categories(ctx context.Context) ([]CategoryView, error)
	Search(ctx context.Context, query string) ([]SearchHit, error)
	AddEntry(ctx context.Context, req AddEntryRequest) (AddEntryResponse, error)
	Rebuild(ctx context.Context) (Status, error)
	Trending(ctx context.Context) ([]TrendingQuery, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

// TrendingStore counts asked questions for recommendations.
type TrendingStore interface {
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}

type service struct {
	cfg      Config
	engine   *Engine
	trending TrendingStore
	stats    *metrics.QueryStats
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, engine *Engine, trending TrendingStore, stats *metrics.QueryStats, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg.withDefaults(),
		engine:   engine,
		trending: trending,
		stats:    stats,
		logger:   logger.With("component", "faq.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	start := s.now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.stats.Record(metrics.OutcomeError, 0)
		return AskResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	k, err := s.resolveTopK(req.TopK)
	if err != nil {
		s.stats.Record(metrics.OutcomeError, 0)
		return AskResponse{}, err
	}

	res := s.engine.AnswerDetailed(ctx, question)
	similar := s.engine.Similar(ctx, question, k)
	s.recordQuery(ctx, question)

	recs, err := s.topQueries(ctx)
	if err != nil {
		s.logger.Warn("faq trending fetch failed", "error", err)
		recs = []TrendingQuery{}
	}

	elapsed := s.now().Sub(start)
	s.stats.Record(outcomeFor(res), elapsed)
	return AskResponse{
		Question:        question,
		Answer:          res.Answer,
		Mode:            res.Mode,
		State:           res.State,
		Score:           res.Score,
		MatchedQuestion: res.MatchedQuestion,
		Category:        res.Category,
		Similar:         similar,
		Recommendations: recs,
		DurationMs:      elapsed.Milliseconds(),
	}, nil
}

func (s *service) Similar(ctx context.Context, req SimilarRequest) (SimilarResponse, error) {
	start := s.now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.stats.Record(metrics.OutcomeError, 0)
		return SimilarResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	k, err := s.resolveTopK(req.TopK)
	if err != nil {
		s.stats.Record(metrics.OutcomeError, 0)
		return SimilarResponse{}, err
	}
	results := s.engine.Similar(ctx, question, k)
	s.stats.Record(metrics.OutcomeSimilar, s.now().Sub(start))
	return SimilarResponse{Question: question, Results: results}, nil
}

func (s *service) List(_ context.Context) ([]Entry, error) {
	return s.engine.Entries(), nil
}

func (s *service) Categories(_ context.Context) ([]CategoryView, error) {
	return s.engine.Categories(), nil
}

func (s *service) Search(_ context.Context, query string) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "search query cannot be empty", nil)
	}
	return s.engine.Search(query), nil
}

func (s *service) AddEntry(ctx context.Context, req AddEntryRequest) (AddEntryResponse, error) {
	entry := Entry{
		Category: strings.TrimSpace(req.Category),
		Question: strings.TrimSpace(req.Question),
		Answer:   strings.TrimSpace(req.Answer),
	}
	switch {
	case entry.Category == "":
		return AddEntryResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "category cannot be empty", nil)
	case entry.Question == "":
		return AddEntryResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	case entry.Answer == "":
		return AddEntryResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "answer cannot be empty", nil)
	}

	var (
		saved      bool
		rebuilt    bool
		rebuildErr error
	)
	if req.Rebuild {
		saved, rebuildErr = s.engine.AddAndRebuild(ctx, entry.Category, entry.Question, entry.Answer)
		rebuilt = rebuildErr == nil
		if rebuildErr != nil && !IsProviderUnavailable(rebuildErr) {
			s.logger.Error("faq rebuild after add failed", "error", rebuildErr)
		}
	} else {
		saved = s.engine.AddEntry(ctx, entry.Category, entry.Question, entry.Answer)
	}
	if !saved {
		return AddEntryResponse{}, apperrors.Wrap(apperrors.CodeFAQSaveFailed, "failed to persist corpus; entry kept in memory", nil)
	}
	s.logger.Info("faq entry added", "category", entry.Category, "rebuilt", rebuilt)
	return AddEntryResponse{Entry: entry, Rebuilt: rebuilt, Status: s.engine.Status()}, nil
}

func (s *service) Rebuild(ctx context.Context) (Status, error) {
	if err := s.engine.Rebuild(ctx); err != nil {
		if IsProviderUnavailable(err) {
			return s.engine.Status(), apperrors.Wrap(apperrors.CodeProviderError, "embedding provider unavailable", err)
		}
		return s.engine.Status(), apperrors.Wrap(apperrors.CodeFAQError, "failed to rebuild embeddings", err)
	}
	return s.engine.Status(), nil
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	recs, err := s.topQueries(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFAQError, "failed to load trending queries", err)
	}
	return recs, nil
}

func (s *service) Stats(_ context.Context) (StatsResponse, error) {
	return StatsResponse{Engine: s.engine.Status(), Queries: s.stats.Snapshot(s.now())}, nil
}

func (s *service) resolveTopK(k int) (int, error) {
	switch {
	case k == 0:
		return s.cfg.DefaultTopK, nil
	case k < 0 || k > s.cfg.MaxTopK:
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "topK must be between 1 and the configured maximum", nil)
	default:
		return k, nil
	}
}

func (s *service) recordQuery(ctx context.Context, question string) {
	if s.trending == nil {
		return
	}
	if err := s.trending.IncrementQuery(ctx, canonicalQuery(question), question); err != nil {
		s.logger.Warn("faq trending increment failed", "error", err)
	}
}

func (s *service) topQueries(ctx context.Context) ([]TrendingQuery, error) {
	if s.trending == nil {
		return []TrendingQuery{}, nil
	}
	recs, err := s.trending.TopQueries(ctx, s.cfg.TopRecommendations)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []TrendingQuery{}
	}
	return recs, nil
}

func outcomeFor(res Result) string {
	switch {
	case res.Mode == ModeSemantic && res.State == StateConfident:
		return metrics.OutcomeSemanticConfident
	case res.Mode == ModeSemantic:
		return metrics.OutcomeSemanticUncertain
	case res.State == StateConfident:
		return metrics.OutcomeLexicalConfident
	default:
		return metrics.OutcomeLexicalUncertain
	}
}
