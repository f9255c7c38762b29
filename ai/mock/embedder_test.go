package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "hello")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "hello")
	require.NoError(t, err)
	other, err := embedder.EmbedText(ctx, "world")
	require.NoError(t, err)

	assert.Len(t, first, DefaultDimension)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestMockEmbedder_Dimension(t *testing.T) {
	embedder := NewMockEmbedderWithDimension(128)

	vector, err := embedder.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vector, 128)
}

func TestMockEmbedder_Batch(t *testing.T) {
	embedder := NewMockEmbedder()

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestMockEmbedder_Injection(t *testing.T) {
	embedder := NewMockEmbedder()
	boom := errors.New("boom")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}

	_, err := embedder.EmbedText(context.Background(), "anything")
	assert.Equal(t, boom, err)

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
	_, err = embedder.EmbedText(context.Background(), "anything")
	assert.NoError(t, err)
}
