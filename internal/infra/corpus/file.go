package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// DefaultFilePath is where the JSON corpus lives when no path is configured.
const DefaultFilePath = "data/faq_data.json"

// FileSource persists the corpus as a JSON document on local disk.
type FileSource struct {
	path string
}

// NewFileSource constructs a source for path.
func NewFileSource(path string) *FileSource {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileSource{path: path}
}

// Path returns the backing file.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Read(_ context.Context) (faq.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return faq.Document{}, fmt.Errorf("%w: %s", faq.ErrCorpusNotFound, s.path)
		}
		return faq.Document{}, fmt.Errorf("read corpus file: %w", err)
	}
	return faq.DecodeDocument(data)
}

// Write replaces the file atomically, creating the parent directory when absent.
func (s *FileSource) Write(_ context.Context, doc faq.Document) error {
	data, err := faq.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".faq-*.json")
	if err != nil {
		return fmt.Errorf("create temp corpus file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write corpus file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod corpus file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace corpus file: %w", err)
	}
	return nil
}

var _ faq.CorpusSource = (*FileSource)(nil)
