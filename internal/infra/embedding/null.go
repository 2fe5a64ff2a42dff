package embedding

import (
	"context"
	"fmt"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
)

// NullEmbedder stands in when no provider could be built.
type NullEmbedder struct {
	reason string
}

// NewNullEmbedder records why embeddings are unavailable.
func NewNullEmbedder(reason string) *NullEmbedder {
	return &NullEmbedder{reason: reason}
}

// Embed always fails with faq.ErrProviderUnavailable.
func (e *NullEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: %s", faq.ErrProviderUnavailable, e.reason)
}
