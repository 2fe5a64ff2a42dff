package faq

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDocumentKeepsCategoryOrder(t *testing.T) {
	raw := []byte(`{
  "categories": {
    "zeta": {"name": "Zeta", "questions": [{"question": "z?", "answer": "z"}]},
    "alpha": {"name": "Alpha", "questions": []},
    "mid": {"name": "Mid", "questions": null}
  },
  "metadata": {"version": "1.0", "last_updated": "2024-01-01", "total_questions": 1}
}`)

	doc, err := DecodeDocument(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, keys(doc.Categories))
	require.Equal(t, 1, doc.Metadata.TotalQuestions)
	require.Equal(t, "2024-01-01", doc.Metadata.LastUpdated)

	encoded, err := EncodeDocument(doc)
	require.NoError(t, err)
	zeta := bytes.Index(encoded, []byte(`"zeta"`))
	alpha := bytes.Index(encoded, []byte(`"alpha"`))
	mid := bytes.Index(encoded, []byte(`"mid"`))
	require.True(t, zeta < alpha && alpha < mid, string(encoded))
	require.Contains(t, string(encoded), `"questions": []`)

	again, err := DecodeDocument(encoded)
	require.NoError(t, err)
	require.Equal(t, keys(doc.Categories), keys(again.Categories))
	require.Equal(t, doc.Categories[0].Questions, again.Categories[0].Questions)
}

func TestDecodeDocumentRepeatedKeyReplacesInPlace(t *testing.T) {
	raw := []byte(`{"categories": {"a": {"name": "first"}, "b": {"name": "B"}, "a": {"name": "second"}}}`)

	doc, err := DecodeDocument(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys(doc.Categories))
	require.Equal(t, "second", doc.Categories[0].Name)
}

func TestDecodeDocumentRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{"categories": {`,
		"missing categories": `{"metadata": {"version": "1.0"}}`,
		"categories array":   `{"categories": []}`,
		"not an object":      `[1, 2, 3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(raw))
			require.ErrorIs(t, err, ErrCorpusMalformed)
		})
	}
}

func TestEncodeDocumentDoesNotEscapeHTML(t *testing.T) {
	doc := Document{Categories: Categories{
		{Key: "tips", Category: Category{Name: "Tips & Tricks", Questions: []QA{{Question: "<b>?", Answer: "a"}}}},
	}}
	encoded, err := EncodeDocument(doc)
	require.NoError(t, err)
	require.Contains(t, string(encoded), "Tips & Tricks")
	require.Contains(t, string(encoded), "<b>?")
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := DefaultDocument()
	clone := doc.Clone()
	clone.Categories[0].Questions[0].Answer = "changed"
	clone.Categories = append(clone.Categories, NamedCategory{Key: "extra"})

	require.NotEqual(t, "changed", doc.Categories[0].Questions[0].Answer)
	require.Len(t, doc.Categories, 3)
}

func keys(c Categories) []string {
	out := make([]string, len(c))
	for i, cat := range c {
		out[i] = cat.Key
	}
	return out
}
