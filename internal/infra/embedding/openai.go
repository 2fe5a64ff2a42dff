package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

const (
	defaultOpenAIModel    = "text-embedding-3-small"
	defaultMaxBatchTokens = 200_000 // stay well below provider's 300k cap
	defaultRequestTimeout = 30 * time.Second
)

// OpenAIConfig configures the OpenAI-compatible embeddings client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	// Encoding names a tiktoken encoding used to size batches. Empty means a
	// local estimate.
	Encoding       string
	MaxBatchTokens int
	RequestTimeout time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client         *openai.Client
	model          string
	dims           int
	maxBatchTokens int
	timeout        time.Duration
	countTokens    func(string) int
	logger         *slog.Logger
}

// NewOpenAIEmbedder constructs an embedder backed by go-openai.
func NewOpenAIEmbedder(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	maxTokens := cfg.MaxBatchTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxBatchTokens
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	log := logger.With("component", "embedding.openai")
	return &OpenAIEmbedder{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          model,
		dims:           cfg.Dimensions,
		maxBatchTokens: maxTokens,
		timeout:        timeout,
		countTokens:    newTokenCounter(cfg.Encoding, log),
		logger:         log,
	}, nil
}

// Embed requests embeddings for texts, batching by token budget.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	var (
		start       int
		batchTokens int
	)
	for i, text := range texts {
		tokens := e.countTokens(text)
		if tokens > e.maxBatchTokens {
			return nil, fmt.Errorf("text too large for embedding request: tokens=%d", tokens)
		}
		if batchTokens+tokens > e.maxBatchTokens && i > start {
			if err := e.embedBatch(ctx, texts[start:i], out[start:i]); err != nil {
				return nil, err
			}
			start, batchTokens = i, 0
		}
		batchTokens += tokens
	}
	if err := e.embedBatch(ctx, texts[start:], out[start:]); err != nil {
		return nil, err
	}
	return out, nil
}

// embedBatch fills dst from one request. The API may return items out of
// order, so they are placed by Index.
func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string, dst [][]float32) error {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
		Input:      batch,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return fmt.Errorf("%w: create embeddings: %w", faq.ErrProviderUnavailable, err)
	}
	if len(resp.Data) != len(batch) {
		return fmt.Errorf("embedding result count mismatch: expected %d, got %d", len(batch), len(resp.Data))
	}
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(batch) || dst[item.Index] != nil {
			return fmt.Errorf("embedding result has invalid index %d", item.Index)
		}
		vec := make([]float32, len(item.Embedding))
		copy(vec, item.Embedding)
		dst[item.Index] = vec
	}
	e.logger.Debug("embeddings created", "count", len(batch), "model", e.model, "promptTokens", resp.Usage.PromptTokens)
	return nil
}

func newTokenCounter(encoding string, logger *slog.Logger) func(string) int {
	encoding = strings.TrimSpace(encoding)
	if encoding == "" {
		return estimateTokens
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, estimating tokens", "encoding", encoding, "error", err)
		return estimateTokens
	}
	return func(text string) int {
		return len(enc.EncodeOrdinary(text))
	}
}

// estimateTokens provides a rough, upper-biased token count.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	// assume ~1 token per 2 runes and never below word count
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
