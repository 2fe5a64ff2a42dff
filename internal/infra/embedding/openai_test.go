package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

type embeddingsServer struct {
	mu      sync.Mutex
	batches [][]string
	fail    bool
}

func (s *embeddingsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/embeddings" {
		http.NotFound(w, r)
		return
	}
	if s.fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		return
	}
	var req struct {
		Input      []string `json:"input"`
		Model      string   `json:"model"`
		Dimensions int      `json:"dimensions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.batches = append(s.batches, req.Input)
	s.mu.Unlock()

	type item struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	data := make([]item, 0, len(req.Input))
	// reversed to make sure the client reorders by index
	for i := len(req.Input) - 1; i >= 0; i-- {
		data = append(data, item{Object: "embedding", Embedding: []float32{float32(len(req.Input[i])), 1}, Index: i})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
		"model":  req.Model,
		"usage":  map[string]int{"prompt_tokens": 3, "total_tokens": 3},
	})
}

func newTestOpenAI(t *testing.T, srv *embeddingsServer, maxTokens int) *OpenAIEmbedder {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	emb, err := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:         "test-key",
		BaseURL:        ts.URL + "/v1/",
		Model:          "text-embedding-3-small",
		MaxBatchTokens: maxTokens,
	}, newTestLogger())
	require.NoError(t, err)
	return emb
}

func TestOpenAIEmbedderKeepsInputOrder(t *testing.T) {
	srv := &embeddingsServer{}
	emb := newTestOpenAI(t, srv, 0)

	vectors, err := emb.Embed(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 1}, {3, 1}, {2, 1}}, vectors)
	require.Len(t, srv.batches, 1)
}

func TestOpenAIEmbedderSplitsBatchesByTokenBudget(t *testing.T) {
	srv := &embeddingsServer{}
	// each 8-rune text estimates to 4 tokens
	emb := newTestOpenAI(t, srv, 8)

	vectors, err := emb.Embed(context.Background(), []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, [][]string{{"aaaaaaaa", "bbbbbbbb"}, {"cccccccc"}}, srv.batches)
}

func TestOpenAIEmbedderRejectsOversizedText(t *testing.T) {
	emb := newTestOpenAI(t, &embeddingsServer{}, 2)
	_, err := emb.Embed(context.Background(), []string{"this text is far too long"})
	require.Error(t, err)
}

func TestOpenAIEmbedderWrapsProviderFailure(t *testing.T) {
	emb := newTestOpenAI(t, &embeddingsServer{fail: true}, 0)
	_, err := emb.Embed(context.Background(), []string{"hello"})
	require.ErrorIs(t, err, faq.ErrProviderUnavailable)
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(OpenAIConfig{}, newTestLogger())
	require.Error(t, err)
}

func TestEstimateTokens(t *testing.T) {
	require.Zero(t, estimateTokens(""))
	require.Equal(t, 4, estimateTokens("aaaaaaaa"))
	require.Equal(t, 3, estimateTokens("a b c"))
}
