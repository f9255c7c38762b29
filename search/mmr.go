package search

import (
	"context"

	"github.com/poiesic/recall/chunking"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// mmrSearch re-ranks a vector candidate pool with Maximal Marginal
// Relevance: at each step it greedily picks the candidate maximizing
//
//	lambda*relevance - (1-lambda)*maxCosineSimilarityToSelected
//
// Relevance is the same distance-to-score transform as plain vector search.
// Ties are broken by pool order: the first eligible candidate wins, which is
// an explicit, not incidental, tie-break. With lambda=1 this degenerates to
// plain vector ranking.
func (s *Searcher) mmrSearch(ctx context.Context, vector []float32, opts Options, monitor SearchMonitor) ([]*core.SearchResult, error) {
	matches, err := s.chunkRepository.VectorSearch(ctx, vector, opts.PoolSize, opts.Filter)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateFetch(MethodMMR, len(matches))
	if len(matches) == 0 {
		return nil, nil
	}

	relevance := make([]float32, len(matches))
	for i, match := range matches {
		relevance[i] = distanceToScore(match.Distance)
	}

	lambda := opts.Lambda
	selected := make([]int, 0, opts.Limit)
	picked := make([]bool, len(matches))

	for len(selected) < opts.Limit && len(selected) < len(matches) {
		best := -1
		var bestScore float32
		for i := range matches {
			if picked[i] {
				continue
			}
			score := lambda*relevance[i] - (1-lambda)*maxSimilarity(matches[i].Chunk.Vector, matches, selected)
			// Strict comparison keeps the first eligible candidate on ties
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		picked[best] = true
		selected = append(selected, best)
	}

	results := make([]*core.SearchResult, 0, len(selected))
	for _, i := range selected {
		results = append(results, &core.SearchResult{
			Chunk:  matches[i].Chunk,
			Score:  relevance[i],
			Method: string(MethodMMR),
		})
	}
	sortResults(results)

	return results, nil
}

// maxSimilarity returns the highest cosine similarity between the candidate
// vector and any already-selected chunk; 0 when nothing is selected yet.
// The maximum can be negative, so it starts from the first selected chunk
// rather than from zero.
func maxSimilarity(vector []float32, matches []*storage.ChunkMatch, selected []int) float32 {
	if len(selected) == 0 {
		return 0
	}
	max := chunking.CosineSimilarity(vector, matches[selected[0]].Chunk.Vector)
	for _, j := range selected[1:] {
		if sim := chunking.CosineSimilarity(vector, matches[j].Chunk.Vector); sim > max {
			max = sim
		}
	}
	return max
}
