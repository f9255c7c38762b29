package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/chunking"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, embedder ai.Embedder, opts ...Option) (*Pipeline, func()) {
	t.Helper()

	entryRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	pipeline, err := NewPipeline(entryRepo, chunkRepo, embedder, opts...)
	require.NoError(t, err)

	cleanup := func() {
		pipeline.Release()
		chunkRepo.Close()
		entryRepo.Close()
		backend.Close()
	}
	return pipeline, cleanup
}

func TestNewPipeline(t *testing.T) {
	entryRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { chunkRepo.Close(); entryRepo.Close(); backend.Close() }()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(entryRepo, chunkRepo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("nil entry repository", func(t *testing.T) {
		_, err := NewPipeline(nil, chunkRepo, embedder)
		assert.Equal(t, ErrEntryRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewPipeline(entryRepo, nil, embedder)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewPipeline(entryRepo, chunkRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(entryRepo, chunkRepo, embedder, WithBatchSize(0))
		assert.Equal(t, ErrInvalidBatchSize, err)
	})
}

func TestIngest_EmptyInput(t *testing.T) {
	pipeline, cleanup := newTestPipeline(t, mock.NewMockEmbedder())
	defer cleanup()

	ctx := context.Background()

	_, err := pipeline.Ingest(ctx, Request{Text: ""})
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = pipeline.Ingest(ctx, Request{Text: "  \n\t "})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestIngest_Receipt(t *testing.T) {
	pipeline, cleanup := newTestPipeline(t, mock.NewMockEmbedder())
	defer cleanup()

	ctx := context.Background()
	before := time.Now().UTC()

	receipt, err := pipeline.Ingest(ctx, Request{
		Text:       "Cats are mammals. Dogs are mammals too. The sky is blue.",
		Title:      "Facts",
		Source:     "facts.txt",
		Confidence: "high",
		Tags:       []string{"animals"},
		Strategy:   chunking.StrategySentence,
		Options:    chunking.Options{SentencesPerChunk: 2},
	})
	require.NoError(t, err)

	assert.NotZero(t, receipt.Id)
	assert.Equal(t, "Facts", receipt.Title)
	assert.Equal(t, 2, receipt.ChunkCount)
	assert.Equal(t, "sentence", receipt.Strategy)
	assert.Equal(t, "facts.txt", receipt.Source)
	assert.Equal(t, "high", receipt.Confidence)
	assert.Equal(t, []string{"animals"}, receipt.Tags)
	assert.False(t, receipt.InsertedAt.Before(before.Truncate(time.Second)))
}

func TestIngest_PersistsEntryAndChunks(t *testing.T) {
	entryRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { chunkRepo.Close(); entryRepo.Close(); backend.Close() }()

	pipeline, err := NewPipeline(entryRepo, chunkRepo, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	receipt, err := pipeline.Ingest(ctx, Request{
		Text:     "First sentence here. Second sentence here. Third sentence here.",
		Source:   "doc.txt",
		Tags:     []string{"t1", "t2"},
		Strategy: chunking.StrategySentence,
		Options:  chunking.Options{SentencesPerChunk: 1},
	})
	require.NoError(t, err)

	entry, err := entryRepo.GetEntry(ctx, receipt.Id)
	require.NoError(t, err)
	assert.Equal(t, receipt.Id, entry.Id)
	assert.Equal(t, 3, entry.ChunkCount)

	chunks, err := chunkRepo.GetChunksByParent(ctx, receipt.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, receipt.Id, chunk.ParentId)
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, 3, chunk.Siblings)
		assert.Equal(t, "sentence", chunk.Strategy)
		assert.Len(t, chunk.Vector, mock.DefaultDimension)
		// Parent metadata denormalized onto every chunk
		assert.Equal(t, "doc.txt", chunk.Source)
		assert.Equal(t, []string{"t1", "t2"}, chunk.Tags)
		assert.True(t, chunk.InsertedAt.Equal(entry.InsertedAt))
	}
}

func TestIngest_DefaultStrategyIsFixed(t *testing.T) {
	pipeline, cleanup := newTestPipeline(t, mock.NewMockEmbedder())
	defer cleanup()

	receipt, err := pipeline.Ingest(context.Background(), Request{Text: "a short document"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", receipt.Strategy)
	assert.Equal(t, 1, receipt.ChunkCount)
}

func TestIngest_SemanticStrategy(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			// Alternate directions so every sentence boundary is a break
			if i%2 == 0 {
				vectors[i] = []float32{1, 0, 0}
			} else {
				vectors[i] = []float32{0, 1, 0}
			}
		}
		return vectors, nil
	}

	pipeline, cleanup := newTestPipeline(t, embedder, WithDimension(3))
	defer cleanup()

	receipt, err := pipeline.Ingest(context.Background(), Request{
		Text:     "One topic entirely. Another topic entirely.",
		Strategy: chunking.StrategySemantic,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, receipt.ChunkCount)
}

func TestIngest_EmbedFailureAbortsBeforeWrites(t *testing.T) {
	entryRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { chunkRepo.Close(); entryRepo.Close(); backend.Close() }()

	wantErr := errors.New("provider down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wantErr
	}

	pipeline, err := NewPipeline(entryRepo, chunkRepo, embedder)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	_, err = pipeline.Ingest(ctx, Request{Text: "doomed document"})
	require.ErrorIs(t, err, wantErr)

	// Nothing may have been persisted
	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, total, err := entryRepo.ListEntries(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIngest_DimensionMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 2} // wrong length
		}
		return vectors, nil
	}

	pipeline, cleanup := newTestPipeline(t, embedder, WithDimension(3))
	defer cleanup()

	_, err := pipeline.Ingest(context.Background(), Request{Text: "mismatched document"})
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestIngest_EmbeddingCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{}, nil
	}

	pipeline, cleanup := newTestPipeline(t, embedder, WithDimension(0))
	defer cleanup()

	_, err := pipeline.Ingest(context.Background(), Request{Text: "short document"})
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestIngest_BatchesLargeDocuments(t *testing.T) {
	var batchSizes []int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchSizes = append(batchSizes, len(texts))
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	pipeline, cleanup := newTestPipeline(t, embedder,
		WithBatchSize(2),
		WithConcurrency(1),
		WithDimension(3))
	defer cleanup()

	// Five single-sentence chunks across batches of two
	receipt, err := pipeline.Ingest(context.Background(), Request{
		Text:     "Alpha one. Beta two. Gamma three. Delta four. Epsilon five.",
		Strategy: chunking.StrategySentence,
		Options:  chunking.Options{SentencesPerChunk: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, receipt.ChunkCount)

	total := 0
	for _, size := range batchSizes {
		assert.LessOrEqual(t, size, 2)
		total += size
	}
	assert.Equal(t, 5, total)
}

func TestIngest_NoChunks(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pipeline, cleanup := newTestPipeline(t, embedder)
	defer cleanup()

	// Recursive chunking of a lone header yields no chunks
	_, err := pipeline.Ingest(context.Background(), Request{
		Text:     "# Title Only",
		Strategy: chunking.StrategyRecursive,
	})
	assert.ErrorIs(t, err, core.ErrNoChunks)
}
