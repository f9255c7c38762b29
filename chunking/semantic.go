package chunking

import (
	"context"
	"math"
	"strings"

	"github.com/poiesic/recall/ai"
)

// SplitSemantic divides text at semantic shift points: each sentence is
// embedded, and a new chunk starts whenever the cosine similarity between a
// sentence and its predecessor drops below the configured threshold.
//
// This is the one effectful strategy: it is deterministic per fixed provider
// but must be treated as non-deterministic under provider drift. Single
// sentence input returns one chunk without calling the provider.
func SplitSemantic(ctx context.Context, embedder ai.Embedder, text string, opts Options) ([]Piece, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	opts = opts.normalized()

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		return []Piece{{Text: sentences[0]}}, nil
	}

	vectors, err := embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(sentences) {
		return nil, ErrEmbeddingCountMismatch
	}

	var pieces []Piece
	group := []string{sentences[0]}
	for i := 1; i < len(sentences); i++ {
		if CosineSimilarity(vectors[i-1], vectors[i]) < opts.SimilarityThreshold {
			pieces = append(pieces, Piece{Text: strings.Join(group, " ")})
			group = group[:0]
		}
		group = append(group, sentences[i])
	}
	pieces = append(pieces, Piece{Text: strings.Join(group, " ")})

	return pieces, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Zero-magnitude or mismatched-length input yields 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
