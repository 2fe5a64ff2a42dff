package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DocumentVersion is written into metadata of newly created corpora.
const DocumentVersion = "1.0"

// QA is a single persisted question/answer pair.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Category groups questions under a display name.
type Category struct {
	Name      string `json:"name"`
	Questions []QA   `json:"questions"`
}

// NamedCategory binds a category to its key inside the document.
type NamedCategory struct {
	Key string
	Category
}

// Categories keeps category keys in document order. It encodes as a JSON
// object so the persisted format stays a plain key -> category mapping.
type Categories []NamedCategory

// Metadata is advisory bookkeeping stored next to the categories.
type Metadata struct {
	Version        string `json:"version"`
	LastUpdated    string `json:"last_updated"`
	TotalQuestions int    `json:"total_questions"`
}

// Document is the persisted corpus.
type Document struct {
	Categories Categories `json:"categories"`
	Metadata   Metadata   `json:"metadata"`
}

// Index returns the position of key, or -1.
func (c Categories) Index(key string) int {
	for i := range c {
		if c[i].Key == key {
			return i
		}
	}
	return -1
}

// MarshalJSON writes the categories as an object, preserving order.
func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(item.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		questions := item.Questions
		if questions == nil {
			questions = []QA{}
		}
		value, err := marshalNoEscape(Category{Name: item.Name, Questions: questions})
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of categories in document order. A repeated
// key replaces the earlier value in place, matching plain object semantics.
func (c *Categories) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("categories must be a JSON object")
	}
	out := Categories{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected category key token %v", tok)
		}
		var cat Category
		if err := dec.Decode(&cat); err != nil {
			return fmt.Errorf("decode category %q: %w", key, err)
		}
		if idx := out.Index(key); idx >= 0 {
			out[idx].Category = cat
			continue
		}
		out = append(out, NamedCategory{Key: key, Category: cat})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// Clone returns a deep copy so callers can mutate freely.
func (d Document) Clone() Document {
	out := Document{Metadata: d.Metadata}
	if d.Categories != nil {
		out.Categories = make(Categories, len(d.Categories))
		for i, item := range d.Categories {
			out.Categories[i] = NamedCategory{
				Key: item.Key,
				Category: Category{
					Name:      item.Name,
					Questions: append([]QA(nil), item.Questions...),
				},
			}
		}
	}
	return out
}

// EncodeDocument renders the document the way it is persisted on disk.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses a persisted document. A payload without a
// categories object is reported as malformed.
func DecodeDocument(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorpusMalformed, err)
	}
	if _, ok := probe["categories"]; !ok {
		return Document{}, fmt.Errorf("%w: missing categories", ErrCorpusMalformed)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorpusMalformed, err)
	}
	return doc, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
