package search

import (
	"context"

	"github.com/poiesic/recall/core"
	"golang.org/x/sync/errgroup"
)

// hybridSearch runs the vector and keyword branches concurrently, each over
// 3x the requested limit under the same filter, and blends their scores.
// Missing sub-scores default to 0. A failure in either branch fails the
// whole call: silently dropping one candidate source would corrupt the
// score semantics callers rely on.
func (s *Searcher) hybridSearch(ctx context.Context, query string, vector []float32, opts Options, monitor SearchMonitor) ([]*core.SearchResult, bool, error) {
	candidates := 3 * opts.Limit

	var (
		vectorResults  []*core.SearchResult
		keywordResults []*core.SearchResult
		truncated      bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vectorResults, err = s.vectorSearch(gctx, vector, candidates, opts.Filter, monitor)
		return err
	})
	g.Go(func() error {
		var err error
		keywordResults, truncated, err = s.keywordSearch(gctx, query, candidates, opts.Filter, opts.ScanLimit, monitor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	results := blendResults(vectorResults, keywordResults, opts.VectorWeight, opts.KeywordWeight)
	sortResults(results)
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, truncated, nil
}

// blendResults merges the two branch result sets by chunk id.
func blendResults(vectorResults, keywordResults []*core.SearchResult, vectorWeight, keywordWeight float32) []*core.SearchResult {
	type blend struct {
		chunk   *core.Chunk
		vector  float32
		keyword float32
	}

	merged := make(map[core.ID]*blend, len(vectorResults)+len(keywordResults))
	for _, result := range vectorResults {
		merged[result.Chunk.Id] = &blend{chunk: result.Chunk, vector: result.Score}
	}
	for _, result := range keywordResults {
		if b, ok := merged[result.Chunk.Id]; ok {
			b.keyword = result.Score
			continue
		}
		merged[result.Chunk.Id] = &blend{chunk: result.Chunk, keyword: result.Score}
	}

	results := make([]*core.SearchResult, 0, len(merged))
	for _, b := range merged {
		results = append(results, &core.SearchResult{
			Chunk:  b.chunk,
			Score:  vectorWeight*b.vector + keywordWeight*b.keyword,
			Method: string(MethodHybrid),
		})
	}
	return results
}
