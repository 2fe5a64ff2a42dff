package faq

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySource is an in-memory CorpusSource.
type memorySource struct {
	mu       sync.Mutex
	doc      *Document
	readErr  error
	writeErr error
	writes   int
}

func (m *memorySource) Read(_ context.Context) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return Document{}, m.readErr
	}
	if m.doc == nil {
		return Document{}, ErrCorpusNotFound
	}
	return m.doc.Clone(), nil
}

func (m *memorySource) Write(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.doc = &doc
	return nil
}

// bagEmbedder hashes lower-cased words into a fixed number of buckets.
type bagEmbedder struct {
	dims int

	mu       sync.Mutex
	calls    int
	err      error
	queryErr error
	panicky  bool
}

func newBagEmbedder() *bagEmbedder {
	return &bagEmbedder{dims: 512}
}

func (b *bagEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.calls++
	calls, err, queryErr, panicky := b.calls, b.err, b.queryErr, b.panicky
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if calls > 1 && queryErr != nil {
		return nil, queryErr
	}
	if calls > 1 && panicky {
		panic("embedder exploded")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, b.dims)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%uint32(b.dims)]++
		}
		out[i] = vec
	}
	return out, nil
}

func newTestEngine(source CorpusSource, embedder Embedder) *Engine {
	store := NewCorpusStore(source, newTestLogger())
	return NewEngine(Config{}, store, embedder, newTestLogger())
}

var errBoom = errors.New("boom")

func threeEntryDocument() Document {
	return Document{
		Categories: Categories{
			{Key: "general", Category: Category{Name: "General Questions", Questions: []QA{
				{
					Question: "How do I upload a photo?",
					Answer:   "You can upload photos through the web interface by clicking the upload button and selecting an image file from your device.",
				},
				{
					Question: "What file formats are supported?",
					Answer:   "The assistant supports common image formats including JPEG, PNG, GIF, and WebP files.",
				},
			}}},
			{Key: "analysis", Category: Category{Name: "Photo Analysis", Questions: []QA{
				{
					Question: "Can you read text in images?",
					Answer:   "Yes, I can extract and read text from images using optical character recognition (OCR) technology.",
				},
			}}},
		},
		Metadata: Metadata{Version: DocumentVersion, LastUpdated: "2024-01-01", TotalQuestions: 3},
	}
}
