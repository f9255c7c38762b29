package search

import "github.com/poiesic/recall/core"

// SearchMonitor receives callbacks as a search progresses. Implementations
// must be cheap; callbacks for hybrid and multi_query branches may arrive
// from multiple goroutines.
type SearchMonitor interface {
	// Start is called once per search with the resolved method, after
	// fallback handling.
	Start(query string, method Method)
	// AfterQueryEmbedding is called with the query vector for methods that
	// embed the query once.
	AfterQueryEmbedding(vector []float32)
	// AfterVariantExpansion is called by multi_query with the generated
	// query variants, original first.
	AfterVariantExpansion(variants []string)
	// AfterCandidateFetch is called when a branch has collected its
	// candidate pool. Hybrid reports both branches; multi_query reports
	// each variant branch.
	AfterCandidateFetch(method Method, candidates int)
	// Finish is called with the final ranked results.
	Finish(results []*core.SearchResult)
}

type noopMonitor struct{}

func (noopMonitor) Start(string, Method)            {}
func (noopMonitor) AfterQueryEmbedding([]float32)   {}
func (noopMonitor) AfterVariantExpansion([]string)  {}
func (noopMonitor) AfterCandidateFetch(Method, int) {}
func (noopMonitor) Finish([]*core.SearchResult)     {}
