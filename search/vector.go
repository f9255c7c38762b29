package search

import (
	"context"

	"github.com/poiesic/recall/core"
)

// vectorSearch asks the store for the limit nearest chunks and converts each
// cosine distance d to a score with 1/(1+d): zero distance maps to 1.0 and
// the score strictly decreases with distance.
func (s *Searcher) vectorSearch(ctx context.Context, vector []float32, limit int, filter *core.Filter, monitor SearchMonitor) ([]*core.SearchResult, error) {
	matches, err := s.chunkRepository.VectorSearch(ctx, vector, limit, filter)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateFetch(MethodVector, len(matches))

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, &core.SearchResult{
			Chunk:  match.Chunk,
			Score:  distanceToScore(match.Distance),
			Method: string(MethodVector),
		})
	}
	return results, nil
}

func distanceToScore(distance float32) float32 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}
