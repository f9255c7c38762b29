package search

import (
	"context"
	"math"
	"strings"

	"github.com/poiesic/recall/core"
)

// BM25 constants.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// keywordSearch scores filter-matching chunks with BM25 over a bounded
// in-memory candidate pool. Term frequency is counted by raw substring
// containment, not tokenization, preserving the original semantics: "cat"
// also counts inside "category". Scores are normalized so the best match
// is 1.0; zero-score chunks are dropped.
func (s *Searcher) keywordSearch(ctx context.Context, query string, limit int, filter *core.Filter, scanLimit int, monitor SearchMonitor) ([]*core.SearchResult, bool, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, false, nil
	}

	chunks, truncated, err := s.chunkRepository.Scan(ctx, filter, scanLimit)
	if err != nil {
		return nil, false, err
	}
	monitor.AfterCandidateFetch(MethodKeyword, len(chunks))
	if truncated {
		s.logger.Warn("keyword scan truncated candidate pool", "scanLimit", scanLimit)
	}
	if len(chunks) == 0 {
		return nil, truncated, nil
	}

	// Precompute lowered texts, document lengths, and per-term document
	// frequencies over the fetched set
	lowered := make([]string, len(chunks))
	docLens := make([]float64, len(chunks))
	var totalLen float64
	for i, chunk := range chunks {
		lowered[i] = strings.ToLower(chunk.Text)
		docLens[i] = float64(len(strings.Fields(chunk.Text)))
		totalLen += docLens[i]
	}
	avgLen := totalLen / float64(len(chunks))
	if avgLen == 0 {
		avgLen = 1
	}

	df := make(map[string]int, len(terms))
	for _, term := range terms {
		for i := range chunks {
			if strings.Contains(lowered[i], term) {
				df[term]++
			}
		}
	}

	n := float64(len(chunks))
	results := make([]*core.SearchResult, 0, limit)
	for i, chunk := range chunks {
		var score float64
		for _, term := range terms {
			tf := float64(strings.Count(lowered[i], term))
			if tf == 0 {
				continue
			}
			idf := math.Log((n-float64(df[term])+0.5)/(float64(df[term])+0.5) + 1)
			score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*docLens[i]/avgLen))
		}
		if score <= 0 {
			continue
		}
		results = append(results, &core.SearchResult{
			Chunk:  chunk,
			Score:  float32(score),
			Method: string(MethodKeyword),
		})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	normalizeScores(results)

	return results, truncated, nil
}

// queryTerms tokenizes the query on whitespace, lowercases, and discards
// terms of length <= 1.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) > 1 {
			terms = append(terms, field)
		}
	}
	return terms
}
