package search

import (
	"slices"

	"github.com/poiesic/recall/core"
)

// sortResults orders results by score descending, chunk id ascending as a
// deterministic tie-break so identical searches return identical orderings.
func sortResults(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Chunk.Id < b.Chunk.Id {
			return -1
		}
		if a.Chunk.Id > b.Chunk.Id {
			return 1
		}
		return 0
	})
}

// normalizeScores divides every score by the top score so the best result
// is exactly 1.0. Results must already be sorted descending.
func normalizeScores(results []*core.SearchResult) {
	if len(results) == 0 || results[0].Score == 0 {
		return
	}
	top := results[0].Score
	for _, result := range results {
		result.Score /= top
	}
}
