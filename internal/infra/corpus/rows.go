package corpus

import (
	"fmt"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

type categoryRow struct {
	key  string
	name string
}

type entryRow struct {
	categoryKey string
	question    string
	answer      string
}

// assemble rebuilds a document from rows already sorted by position.
func assemble(categories []categoryRow, entries []entryRow, meta faq.Metadata) (faq.Document, error) {
	doc := faq.Document{Categories: make(faq.Categories, 0, len(categories)), Metadata: meta}
	for _, c := range categories {
		doc.Categories = append(doc.Categories, faq.NamedCategory{
			Key:      c.key,
			Category: faq.Category{Name: c.name, Questions: []faq.QA{}},
		})
	}
	for _, e := range entries {
		idx := doc.Categories.Index(e.categoryKey)
		if idx < 0 {
			return faq.Document{}, fmt.Errorf("%w: entry references unknown category %q", faq.ErrCorpusMalformed, e.categoryKey)
		}
		doc.Categories[idx].Questions = append(doc.Categories[idx].Questions, faq.QA{Question: e.question, Answer: e.answer})
	}
	return doc, nil
}
