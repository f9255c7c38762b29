package search

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/recall/core"
	"golang.org/x/sync/errgroup"
)

// maxQueryVariants caps how many variants of a query are generated.
const maxQueryVariants = 4

// multiQuerySearch expands the query into a few variants, runs a search per
// variant, and fuses the ranked lists with Reciprocal Rank Fusion: each
// appearance of a chunk at 0-based rank r contributes 1/(k+r+1) with k=60.
// Fused scores are normalized so the best result is 1.0.
func (s *Searcher) multiQuerySearch(ctx context.Context, query string, opts Options, monitor SearchMonitor) ([]*core.SearchResult, bool, error) {
	variants := queryVariants(query)
	monitor.AfterVariantExpansion(variants)

	// One batched provider call covers every variant
	vectors, err := s.embedder.EmbedTexts(ctx, variants)
	if err != nil {
		s.logger.Error("error embedding query variants", "variants", len(variants), "err", err)
		return nil, false, err
	}
	if len(vectors) != len(variants) {
		return nil, false, ErrEmbeddingCountMismatch
	}

	candidates := 2 * opts.Limit
	rankings := make([][]*core.SearchResult, len(variants))
	var mu sync.Mutex
	truncated := false

	g, gctx := errgroup.WithContext(ctx)
	for i := range variants {
		g.Go(func() error {
			var (
				ranked []*core.SearchResult
				trunc  bool
				err    error
			)
			if opts.FusionBase == MethodHybrid {
				branchOpts := opts
				branchOpts.Limit = candidates
				ranked, trunc, err = s.hybridSearch(gctx, variants[i], vectors[i], branchOpts, monitor)
			} else {
				ranked, err = s.vectorSearch(gctx, vectors[i], candidates, opts.Filter, monitor)
			}
			if err != nil {
				return err
			}
			mu.Lock()
			rankings[i] = ranked
			if trunc {
				truncated = true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	fused := fuseRankings(rankings)
	sortResults(fused)
	if len(fused) > opts.Limit {
		fused = fused[:opts.Limit]
	}
	normalizeScores(fused)

	return fused, truncated, nil
}

// fuseRankings sums the reciprocal-rank contributions of every variant's
// ranked list. Fusion is rank-based, not score-based: the branch scores are
// discarded and only positions matter.
func fuseRankings(rankings [][]*core.SearchResult) []*core.SearchResult {
	fused := make(map[core.ID]*core.SearchResult)
	for _, ranked := range rankings {
		for rank, result := range ranked {
			contribution := float32(1) / float32(rrfK+rank+1)
			if existing, ok := fused[result.Chunk.Id]; ok {
				existing.Score += contribution
				continue
			}
			fused[result.Chunk.Id] = &core.SearchResult{
				Chunk:  result.Chunk,
				Score:  contribution,
				Method: string(MethodMultiQuery),
			}
		}
	}

	results := make([]*core.SearchResult, 0, len(fused))
	for _, result := range fused {
		results = append(results, result)
	}
	return results
}

// queryVariants generates up to maxQueryVariants reformulations: the
// original; a content-word-only version when stripping stop words changes
// it; and a "what is {query}" form when the query doesn't already start
// with "what".
func queryVariants(query string) []string {
	variants := []string{query}
	lower := strings.ToLower(query)

	content := strings.Join(tokenizeAndFilter(query), " ")
	if content != "" && content != lower {
		variants = append(variants, content)
	}

	if !strings.HasPrefix(lower, "what") {
		variants = append(variants, "what is "+query)
	}

	if len(variants) > maxQueryVariants {
		variants = variants[:maxQueryVariants]
	}
	return variants
}
