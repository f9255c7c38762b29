package search

import (
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
)

func result(id core.ID, score float32) *core.SearchResult {
	return &core.SearchResult{Chunk: &core.Chunk{Id: id}, Score: score}
}

func TestSortResults(t *testing.T) {
	t.Run("descending by score", func(t *testing.T) {
		results := []*core.SearchResult{result(1, 0.2), result(2, 0.9), result(3, 0.5)}
		sortResults(results)
		assert.Equal(t, core.ID(2), results[0].Chunk.Id)
		assert.Equal(t, core.ID(3), results[1].Chunk.Id)
		assert.Equal(t, core.ID(1), results[2].Chunk.Id)
	})

	t.Run("ties break by chunk id", func(t *testing.T) {
		results := []*core.SearchResult{result(9, 0.5), result(3, 0.5), result(7, 0.5)}
		sortResults(results)
		assert.Equal(t, core.ID(3), results[0].Chunk.Id)
		assert.Equal(t, core.ID(7), results[1].Chunk.Id)
		assert.Equal(t, core.ID(9), results[2].Chunk.Id)
	})

	t.Run("empty and single", func(t *testing.T) {
		sortResults(nil)
		one := []*core.SearchResult{result(1, 0.5)}
		sortResults(one)
		assert.Len(t, one, 1)
	})
}

func TestNormalizeScores(t *testing.T) {
	t.Run("top becomes one", func(t *testing.T) {
		results := []*core.SearchResult{result(1, 0.8), result(2, 0.4), result(3, 0.2)}
		normalizeScores(results)
		assert.Equal(t, float32(1), results[0].Score)
		assert.Equal(t, float32(0.5), results[1].Score)
		assert.Equal(t, float32(0.25), results[2].Score)
	})

	t.Run("zero top is left alone", func(t *testing.T) {
		results := []*core.SearchResult{result(1, 0), result(2, 0)}
		normalizeScores(results)
		assert.Equal(t, float32(0), results[0].Score)
	})

	t.Run("empty", func(t *testing.T) {
		normalizeScores(nil)
	})
}
