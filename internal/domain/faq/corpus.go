package faq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/yanqian/semantic-faq/pkg/util"
)

// CorpusSource persists the corpus document.
type CorpusSource interface {
	// Read returns ErrCorpusNotFound when nothing has been stored yet.
	Read(ctx context.Context) (Document, error)
	Write(ctx context.Context, doc Document) error
}

// CorpusStore holds the question bank in memory and writes it through a
// CorpusSource. It assumes a single writer; Engine serializes access.
type CorpusStore struct {
	source CorpusSource
	logger *slog.Logger
	now    func() time.Time
	doc    Document
}

// NewCorpusStore constructs an empty store; call Load before use.
func NewCorpusStore(source CorpusSource, logger *slog.Logger) *CorpusStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorpusStore{
		source: source,
		logger: logger.With("component", "faq.corpus"),
		now:    util.NowUTC,
		doc:    Document{Categories: Categories{}},
	}
}

// Load reads the persisted corpus. Missing or malformed sources resolve to
// the built-in default corpus; Load never fails.
func (s *CorpusStore) Load(ctx context.Context) Document {
	if s.source == nil {
		s.doc = DefaultDocument()
		return s.doc.Clone()
	}
	doc, err := s.source.Read(ctx)
	switch {
	case err == nil:
		if doc.Categories == nil {
			doc.Categories = Categories{}
		}
		s.doc = doc
	case errors.Is(err, ErrCorpusNotFound):
		s.logger.Info("corpus not found, using default corpus")
		s.doc = DefaultDocument()
	default:
		s.logger.Warn("corpus load failed, using default corpus", "error", err)
		s.doc = DefaultDocument()
	}
	return s.doc.Clone()
}

// Reload re-reads the source and replaces the in-memory document. Unlike
// Load, a failed read keeps the current document. changed reports whether
// the stored document differs from the one in memory.
func (s *CorpusStore) Reload(ctx context.Context) (changed bool, err error) {
	if s.source == nil {
		return false, errors.New("corpus source not configured")
	}
	doc, err := s.source.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("read corpus: %w", err)
	}
	if doc.Categories == nil {
		doc.Categories = Categories{}
	}
	if reflect.DeepEqual(doc, s.doc) {
		return false, nil
	}
	s.doc = doc
	return true, nil
}

// Document returns a copy of the in-memory document.
func (s *CorpusStore) Document() Document {
	return s.doc.Clone()
}

// AllEntries flattens the corpus in category-then-insertion order. The
// returned positions are the index space used for embeddings.
func (s *CorpusStore) AllEntries() []Entry {
	total := 0
	for _, cat := range s.doc.Categories {
		total += len(cat.Questions)
	}
	entries := make([]Entry, 0, total)
	for _, cat := range s.doc.Categories {
		for _, qa := range cat.Questions {
			entries = append(entries, Entry{Category: cat.Key, Question: qa.Question, Answer: qa.Answer})
		}
	}
	return entries
}

// Len reports the number of entries without flattening.
func (s *CorpusStore) Len() int {
	total := 0
	for _, cat := range s.doc.Categories {
		total += len(cat.Questions)
	}
	return total
}

// AddEntry appends to category, creating it when absent, and persists the
// corpus. A false result means persistence failed; the append is kept.
func (s *CorpusStore) AddEntry(ctx context.Context, category, question, answer string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("add entry panicked", "panic", r)
			ok = false
		}
	}()

	idx := s.doc.Categories.Index(category)
	if idx < 0 {
		s.doc.Categories = append(s.doc.Categories, NamedCategory{
			Key:      category,
			Category: Category{Name: titleCase(category), Questions: []QA{}},
		})
		idx = len(s.doc.Categories) - 1
	}
	s.doc.Categories[idx].Questions = append(s.doc.Categories[idx].Questions, QA{Question: question, Answer: answer})
	s.doc.Metadata.TotalQuestions++
	s.doc.Metadata.LastUpdated = util.DateString(s.now())
	if s.doc.Metadata.Version == "" {
		s.doc.Metadata.Version = DocumentVersion
	}

	if err := s.Save(ctx); err != nil {
		s.logger.Error("corpus save failed", "category", category, "error", err)
		return false
	}
	return true
}

// Save writes the current document through the source.
func (s *CorpusStore) Save(ctx context.Context) error {
	if s.source == nil {
		return errors.New("corpus source not configured")
	}
	if err := s.source.Write(ctx, s.doc.Clone()); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}

// Categories lists category keys in document order.
func (s *CorpusStore) Categories() []string {
	keys := make([]string, 0, len(s.doc.Categories))
	for _, cat := range s.doc.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}

// CategoryViews lists categories with display names and sizes.
func (s *CorpusStore) CategoryViews() []CategoryView {
	views := make([]CategoryView, 0, len(s.doc.Categories))
	for _, cat := range s.doc.Categories {
		views = append(views, CategoryView{Key: cat.Key, Name: cat.Name, Count: len(cat.Questions)})
	}
	return views
}

// TotalQuestions returns the advisory counter from metadata.
func (s *CorpusStore) TotalQuestions() int {
	return s.doc.Metadata.TotalQuestions
}

// Lookup finds the answer of a question that matches exactly, ignoring case.
func (s *CorpusStore) Lookup(question string) (string, bool) {
	target := strings.ToLower(question)
	for _, cat := range s.doc.Categories {
		for _, qa := range cat.Questions {
			if strings.ToLower(qa.Question) == target {
				return qa.Answer, true
			}
		}
	}
	return "", false
}

// Search scores entries by substring containment: 3 points when the query
// occurs in the question and 1 when it occurs in the answer.
func (s *CorpusStore) Search(query string) []SearchHit {
	needle := strings.ToLower(query)
	hits := make([]SearchHit, 0)
	for _, cat := range s.doc.Categories {
		for _, qa := range cat.Questions {
			score := 0
			if strings.Contains(strings.ToLower(qa.Question), needle) {
				score += 3
			}
			if strings.Contains(strings.ToLower(qa.Answer), needle) {
				score++
			}
			if score == 0 {
				continue
			}
			hits = append(hits, SearchHit{
				Question:       qa.Question,
				Answer:         qa.Answer,
				Category:       cat.Name,
				RelevanceScore: score,
			})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RelevanceScore > hits[j].RelevanceScore
	})
	return hits
}

// DefaultDocument is served when no persisted corpus can be read.
func DefaultDocument() Document {
	return Document{
		Categories: Categories{
			{Key: "general", Category: Category{Name: "General Questions", Questions: []QA{
				{
					Question: "What can this photo assistant do?",
					Answer:   "This photo assistant can analyze images to detect objects, extract text, identify scenes, and answer questions about photos using AI-powered vision and language models.",
				},
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
					Question: "What information can you extract from photos?",
					Answer:   "I can detect objects, recognize text (OCR), identify scenes and concepts, detect faces, and provide detailed descriptions of image content.",
				},
				{
					Question: "How accurate is the analysis?",
					Answer:   "The analysis uses state-of-the-art AI models with high accuracy, though results may vary depending on image quality and content complexity.",
				},
				{
					Question: "Can you read text in images?",
					Answer:   "Yes, I can extract and read text from images using optical character recognition (OCR) technology.",
				},
			}}},
			{Key: "usage", Category: Category{Name: "Usage Tips", Questions: []QA{
				{
					Question: "How do I ask questions about my photos?",
					Answer:   "After uploading a photo, you can type questions in the chat interface. Ask about objects, colors, text, or any other aspects of the image.",
				},
				{
					Question: "What types of questions work best?",
					Answer:   "Specific questions work best, such as 'What objects do you see?', 'Is there text in this image?', or 'Describe the colors in this photo.'",
				},
				{
					Question: "Can you compare multiple photos?",
					Answer:   "Currently, the assistant analyzes one photo at a time. You can upload different photos sequentially for comparison.",
				},
			}}},
		},
		Metadata: Metadata{
			Version:        DocumentVersion,
			LastUpdated:    "2024-01-01",
			TotalQuestions: 9,
		},
	}
}
