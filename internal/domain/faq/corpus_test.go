package faq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultCorpus(t *testing.T) {
	cases := map[string]CorpusSource{
		"no source":      nil,
		"missing":        &memorySource{},
		"malformed":      &memorySource{readErr: fmt.Errorf("%w: bad json", ErrCorpusMalformed)},
		"unreadable":     &memorySource{readErr: errBoom},
		"missing marker": &memorySource{readErr: fmt.Errorf("open corpus: %w", ErrCorpusNotFound)},
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewCorpusStore(source, newTestLogger())
			doc := store.Load(context.Background())

			require.Len(t, store.AllEntries(), 9)
			require.Equal(t, []string{"general", "analysis", "usage"}, store.Categories())
			require.Equal(t, 9, doc.Metadata.TotalQuestions)
		})
	}
}

func TestLoadReadsPersistedCorpus(t *testing.T) {
	store := NewCorpusStore(&memorySource{doc: ptr(threeEntryDocument())}, newTestLogger())
	store.Load(context.Background())

	entries := store.AllEntries()
	require.Len(t, entries, 3)
	require.Equal(t, "general", entries[0].Category)
	require.Equal(t, "analysis", entries[2].Category)
	require.Equal(t, 3, store.Len())
}

func TestAddEntryAppendsAndPersists(t *testing.T) {
	source := &memorySource{doc: ptr(threeEntryDocument())}
	store := NewCorpusStore(source, newTestLogger())
	store.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	store.Load(context.Background())
	before := store.TotalQuestions()

	ok := store.AddEntry(context.Background(), "general", "Is there a size limit?", "Up to 10MB.")
	require.True(t, ok)

	entries := store.AllEntries()
	require.Len(t, entries, 4)
	require.Equal(t, Entry{Category: "general", Question: "Is there a size limit?", Answer: "Up to 10MB."}, entries[2])
	require.Equal(t, before+1, store.TotalQuestions())
	require.Equal(t, 1, source.writes)
	require.Equal(t, "2026-03-04", source.doc.Metadata.LastUpdated)
	require.Len(t, source.doc.Categories[0].Questions, 3)
}

func TestAddEntryCreatesCategory(t *testing.T) {
	source := &memorySource{doc: ptr(threeEntryDocument())}
	store := NewCorpusStore(source, newTestLogger())
	store.Load(context.Background())

	require.True(t, store.AddEntry(context.Background(), "photo tips", "Best light?", "Golden hour."))

	views := store.CategoryViews()
	require.Len(t, views, 3)
	require.Equal(t, CategoryView{Key: "photo tips", Name: "Photo Tips", Count: 1}, views[2])
	entries := store.AllEntries()
	require.Equal(t, "Best light?", entries[len(entries)-1].Question)
}

func TestAddEntrySaveFailureKeepsAppend(t *testing.T) {
	source := &memorySource{doc: ptr(threeEntryDocument()), writeErr: errBoom}
	store := NewCorpusStore(source, newTestLogger())
	store.Load(context.Background())

	ok := store.AddEntry(context.Background(), "general", "New?", "Yes.")
	require.False(t, ok)
	require.Len(t, store.AllEntries(), 4)
	require.Equal(t, 4, store.TotalQuestions())
}

func TestAddEntryWithoutSourceReportsFailure(t *testing.T) {
	store := NewCorpusStore(nil, newTestLogger())
	store.Load(context.Background())

	require.False(t, store.AddEntry(context.Background(), "usage", "q", "a"))
	require.Len(t, store.AllEntries(), 10)
}

func TestAddEntryAllowsDuplicates(t *testing.T) {
	store := NewCorpusStore(&memorySource{}, newTestLogger())
	store.Load(context.Background())

	require.True(t, store.AddEntry(context.Background(), "general", "How do I upload a photo?", "Again."))
	count := 0
	for _, entry := range store.AllEntries() {
		if entry.Question == "How do I upload a photo?" {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestSearchRanksQuestionMatchesFirst(t *testing.T) {
	store := NewCorpusStore(nil, newTestLogger())
	store.Load(context.Background())

	hits := store.Search("UPLOAD")
	require.Len(t, hits, 3)
	require.Equal(t, "How do I upload a photo?", hits[0].Question)
	require.Equal(t, 4, hits[0].RelevanceScore)
	require.Equal(t, "General Questions", hits[0].Category)
	require.Equal(t, "How do I ask questions about my photos?", hits[1].Question)
	require.Equal(t, 1, hits[1].RelevanceScore)
	require.Equal(t, "Can you compare multiple photos?", hits[2].Question)

	require.Empty(t, store.Search("no such phrase"))
}

func TestLookupIgnoresCase(t *testing.T) {
	store := NewCorpusStore(nil, newTestLogger())
	store.Load(context.Background())

	answer, ok := store.Lookup("what file formats are SUPPORTED?")
	require.True(t, ok)
	require.Contains(t, answer, "JPEG")

	_, ok = store.Lookup("what file formats")
	require.False(t, ok)
}
