package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

func TestSQLiteSourceRoundTrip(t *testing.T) {
	source, err := OpenSQLiteSource(context.Background(), filepath.Join(t.TempDir(), "db", "faq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	_, err = source.Read(context.Background())
	require.ErrorIs(t, err, faq.ErrCorpusNotFound)

	doc := faq.DefaultDocument()
	doc.Categories = append(doc.Categories, faq.NamedCategory{
		Key:      "empty",
		Category: faq.Category{Name: "Empty", Questions: []faq.QA{}},
	})
	require.NoError(t, source.Write(context.Background(), doc))

	got, err := source.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, doc, got)

	doc.Categories[0].Questions = doc.Categories[0].Questions[:1]
	doc.Metadata.TotalQuestions = 7
	require.NoError(t, source.Write(context.Background(), doc))
	got, err = source.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Categories[0].Questions, 1)
	require.Equal(t, 7, got.Metadata.TotalQuestions)
}
