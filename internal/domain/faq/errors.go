package faq

import "errors"

var (
	// ErrProviderUnavailable reports that no embedding model can serve requests.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrCorpusNotFound is returned by a CorpusSource that holds no document yet.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrCorpusMalformed is returned when a persisted document cannot be parsed.
	ErrCorpusMalformed = errors.New("corpus malformed")
)
