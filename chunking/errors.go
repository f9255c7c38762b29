package chunking

import "errors"

var (
	// ErrUnknownStrategy is returned for a strategy name Split does not know.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrEffectfulStrategy is returned when the semantic strategy is passed to
	// Split; it needs an embedding provider and must go through SplitSemantic.
	ErrEffectfulStrategy = errors.New("semantic strategy requires an embedder, use SplitSemantic")

	// ErrEmbedderRequired is returned when SplitSemantic is called without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingCountMismatch is returned when the provider returns a
	// different number of vectors than sentences submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match sentence count")
)
