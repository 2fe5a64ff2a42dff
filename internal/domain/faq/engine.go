package faq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/semantic-faq/pkg/util"
)

// Embedder maps a batch of texts to vectors; output[i] belongs to input[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// embeddingCache is immutable once built; rebuilds swap the pointer.
type embeddingCache struct {
	entries []Entry
	vectors [][]float32
	dims    int
	builtAt time.Time
}

// Engine answers questions against the corpus. It is safe for concurrent
// use: queries share a read lock, corpus mutation and cache rebuilds take
// the write lock.
type Engine struct {
	cfg      Config
	store    *CorpusStore
	embedder Embedder
	logger   *slog.Logger
	now      func() time.Time

	mu             sync.RWMutex
	cache          *embeddingCache
	fallback       bool
	fallbackReason string
}

// NewEngine loads the corpus and embeds it. When embedder is nil or the
// initial embedding fails, the engine serves lexical answers for its lifetime.
func NewEngine(cfg Config, store *CorpusStore, embedder Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:      cfg.withDefaults(),
		store:    store,
		embedder: embedder,
		logger:   logger.With("component", "faq.engine"),
		now:      util.NowUTC,
	}

	ctx := context.Background()
	if e.cfg.WarmupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.WarmupTimeout)
		defer cancel()
	}
	store.Load(ctx)

	if embedder == nil {
		e.enterFallback("no embedding provider configured")
		return e
	}
	if err := e.rebuildLocked(ctx); err != nil {
		e.enterFallback(err.Error())
		return e
	}
	e.logger.Info("faq engine ready", "entries", len(e.cache.entries), "dims", e.cache.dims)
	return e
}

func (e *Engine) enterFallback(reason string) {
	e.fallback = true
	e.fallbackReason = reason
	e.cache = nil
	e.logger.Warn("embedding unavailable, using lexical fallback", "reason", reason)
}

// Answer returns exactly one non-empty answer and never fails.
func (e *Engine) Answer(ctx context.Context, query string) string {
	return e.AnswerDetailed(ctx, query).Answer
}

// AnswerDetailed is Answer plus how the answer was chosen.
func (e *Engine) AnswerDetailed(ctx context.Context, query string) Result {
	cache, fallback := e.snapshot()
	if !fallback {
		res, err := e.answerSemantic(ctx, query, cache)
		if err == nil {
			return res
		}
		e.logger.Warn("semantic answer failed, using lexical fallback", "error", err)
	}
	return e.answerLexical(query)
}

func (e *Engine) answerSemantic(ctx context.Context, query string, cache *embeddingCache) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("semantic answer panicked: %v", r)
		}
	}()
	if len(cache.entries) == 0 {
		return Result{Answer: UncertainAnswer, Mode: ModeSemantic, State: StateUncertain}, nil
	}
	vector, err := e.embedQuery(ctx, query, cache.dims)
	if err != nil {
		return Result{}, err
	}
	match, found := Best(vector, cache.vectors)
	sel := Select(match, found, cache.entries, e.cfg.SimilarityThreshold)
	return toResult(sel, ModeSemantic), nil
}

func (e *Engine) answerLexical(query string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("lexical answer panicked", "panic", r)
			res = Result{Answer: UncertainAnswer, Mode: ModeLexical, State: StateUncertain}
		}
	}()
	e.mu.RLock()
	entries := e.store.AllEntries()
	e.mu.RUnlock()
	return toResult(MatchLexical(query, entries, e.cfg.LexicalThreshold), ModeLexical)
}

// Similar returns up to k entries ranked by similarity, including results
// below the answer threshold. It is empty whenever embeddings are unavailable.
func (e *Engine) Similar(ctx context.Context, query string, k int) (out []SimilarQuestion) {
	out = []SimilarQuestion{}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("similar questions panicked", "panic", r)
			out = []SimilarQuestion{}
		}
	}()
	cache, fallback := e.snapshot()
	if fallback || k <= 0 || len(cache.entries) == 0 {
		return out
	}
	vector, err := e.embedQuery(ctx, query, cache.dims)
	if err != nil {
		e.logger.Warn("similar questions unavailable", "error", err)
		return out
	}
	for _, m := range TopK(vector, cache.vectors, k) {
		entry := cache.entries[m.Index]
		out = append(out, SimilarQuestion{Question: entry.Question, Answer: entry.Answer, Score: m.Score})
	}
	return out
}

func (e *Engine) embedQuery(ctx context.Context, query string, dims int) ([]float32, error) {
	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}
	if len(vectors[0]) != dims {
		return nil, fmt.Errorf("embed query: dimension %d does not match cache dimension %d", len(vectors[0]), dims)
	}
	return vectors[0], nil
}

// Rebuild re-embeds the current corpus and replaces the cache. On failure
// the previous cache keeps serving. In fallback mode it returns
// ErrProviderUnavailable.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fallback {
		return ErrProviderUnavailable
	}
	return e.rebuildLocked(ctx)
}

func (e *Engine) rebuildLocked(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embed corpus panicked: %v", r)
		}
	}()
	entries := e.store.AllEntries()
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Question
	}
	var vectors [][]float32
	if len(texts) > 0 {
		vectors, err = e.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed corpus: %w", err)
		}
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embed corpus: expected %d vectors, got %d", len(entries), len(vectors))
	}
	dims := 0
	for i, v := range vectors {
		if i == 0 {
			dims = len(v)
		}
		if len(v) == 0 || len(v) != dims {
			return fmt.Errorf("embed corpus: inconsistent vector dimension at %d", i)
		}
	}
	e.cache = &embeddingCache{entries: entries, vectors: vectors, dims: dims, builtAt: e.now()}
	return nil
}

// Reload picks up external edits of the persisted corpus and re-embeds it
// when it changed. A failed read keeps serving the current corpus.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed, err := e.store.Reload(ctx)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	e.logger.Info("faq corpus reloaded", "entries", e.store.Len())
	if e.fallback {
		return nil
	}
	return e.rebuildLocked(ctx)
}

// AddEntry appends to the corpus and persists it. The embedding cache is
// left untouched: the new entry is not ranked until Rebuild.
func (e *Engine) AddEntry(ctx context.Context, category, question, answer string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.AddEntry(ctx, category, question, answer)
}

// AddAndRebuild appends and re-embeds under one write lock. saved reports
// persistence; err reports the rebuild (ErrProviderUnavailable in fallback mode).
func (e *Engine) AddAndRebuild(ctx context.Context, category, question, answer string) (saved bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	saved = e.store.AddEntry(ctx, category, question, answer)
	if e.fallback {
		return saved, ErrProviderUnavailable
	}
	return saved, e.rebuildLocked(ctx)
}

// Entries returns the current flattened corpus.
func (e *Engine) Entries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.AllEntries()
}

// Categories lists categories with display names and sizes.
func (e *Engine) Categories() []CategoryView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.CategoryViews()
}

// Search runs the substring search over the current corpus.
func (e *Engine) Search(query string) []SearchHit {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Search(query)
}

// Lookup returns the answer for an exact (case-insensitive) question.
func (e *Engine) Lookup(question string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Lookup(strings.TrimSpace(question))
}

// Status reports fallback mode and cache freshness.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := Status{
		FallbackMode:   e.fallback,
		FallbackReason: e.fallbackReason,
		CorpusEntries:  e.store.Len(),
		TotalQuestions: e.store.TotalQuestions(),
	}
	if e.cache != nil {
		st.CachedEntries = len(e.cache.entries)
		st.Dimensions = e.cache.dims
		st.BuiltAt = e.cache.builtAt
		st.Stale = !sameEntries(e.cache.entries, e.store.AllEntries())
	}
	return st
}

func (e *Engine) snapshot() (*embeddingCache, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.fallback || e.cache == nil {
		return nil, true
	}
	return e.cache, false
}

// IsProviderUnavailable reports whether err means the engine runs without embeddings.
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

func toResult(sel Selection, mode Mode) Result {
	res := Result{Answer: sel.Answer, Mode: mode, State: sel.State, Score: sel.Match.Score}
	if sel.State == StateConfident {
		res.MatchedQuestion = sel.Entry.Question
		res.Category = sel.Entry.Category
	}
	return res
}

func sameEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
