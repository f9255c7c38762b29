package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Method selects the retrieval algorithm.
type Method string

const (
	// MethodVector ranks by embedding similarity alone.
	MethodVector Method = "vector"
	// MethodKeyword ranks by BM25-style lexical scoring.
	MethodKeyword Method = "keyword"
	// MethodHybrid blends vector and keyword scores.
	MethodHybrid Method = "hybrid"
	// MethodMMR re-ranks a vector pool for diversity.
	MethodMMR Method = "mmr"
	// MethodMultiQuery fuses several query variants with Reciprocal Rank Fusion.
	MethodMultiQuery Method = "multi_query"
)

// Default search parameters.
const (
	DefaultLimit         = 10
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
	DefaultLambda        = 0.5
	DefaultPoolSize      = 30
	DefaultScanLimit     = 10000
	rrfK                 = 60
)

// Options tunes a single search call. The zero value gets defaults.
type Options struct {
	// Method selects the algorithm. Unknown or empty methods fall back to
	// hybrid; this leniency is deliberate.
	Method Method
	// Limit is the hard cap on returned results. Default 10.
	Limit int
	// Filter restricts candidates by metadata; nil matches everything.
	Filter *core.Filter
	// VectorWeight and KeywordWeight blend the hybrid sub-scores.
	// Defaults 0.7 and 0.3; they are not required to sum to 1.
	VectorWeight  float32
	KeywordWeight float32
	// Lambda trades relevance against diversity for MMR. Default 0.5.
	// Zero is a valid pure-diversity setting when LambdaSet is true.
	Lambda float32
	// LambdaSet marks Lambda as explicitly chosen, so a zero Lambda is
	// honored instead of defaulted.
	LambdaSet bool
	// PoolSize is the MMR candidate pool fetched by vector search. Default 30.
	PoolSize int
	// ScanLimit bounds the keyword candidate scan. Default 10000.
	ScanLimit int
	// FusionBase selects the per-variant search for multi_query:
	// MethodVector (default) or MethodHybrid.
	FusionBase Method
}

func (o Options) normalized() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.VectorWeight == 0 && o.KeywordWeight == 0 {
		o.VectorWeight = DefaultVectorWeight
		o.KeywordWeight = DefaultKeywordWeight
	}
	if o.Lambda < 0 || (o.Lambda == 0 && !o.LambdaSet) {
		o.Lambda = DefaultLambda
	}
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.ScanLimit <= 0 {
		o.ScanLimit = DefaultScanLimit
	}
	if o.FusionBase != MethodHybrid {
		o.FusionBase = MethodVector
	}
	return o
}

// Response carries the ranked results plus result-level metadata.
type Response struct {
	Results []*core.SearchResult
	// Truncated reports that the keyword candidate scan hit its limit, so
	// lexical scores were computed over a truncated pool. It is a warning,
	// not a failure.
	Truncated bool
}

// Searcher answers queries over stored chunks using one of five retrieval
// methods. It holds no state between calls and is safe for concurrent use.
type Searcher struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(chunkRepository storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the query with the selected method. Results are ordered by
// score descending, capped at the limit; an empty candidate pool yields an
// empty result list, never an error. Identical inputs against an unchanged
// store yield identical ordered results.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor runs Search with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyInput
	}
	opts = opts.normalized()

	method := opts.Method
	switch method {
	case MethodVector, MethodKeyword, MethodHybrid, MethodMMR, MethodMultiQuery:
	default:
		// Unknown methods fall back to hybrid rather than erroring
		if method != "" {
			s.logger.Warn("unknown search method, falling back to hybrid", "method", method)
		}
		method = MethodHybrid
	}

	monitor.Start(query, method)

	var (
		results   []*core.SearchResult
		truncated bool
		err       error
	)

	switch method {
	case MethodVector:
		var vector []float32
		vector, err = s.embedQuery(ctx, query, monitor)
		if err == nil {
			results, err = s.vectorSearch(ctx, vector, opts.Limit, opts.Filter, monitor)
		}
	case MethodKeyword:
		results, truncated, err = s.keywordSearch(ctx, query, opts.Limit, opts.Filter, opts.ScanLimit, monitor)
	case MethodHybrid:
		var vector []float32
		vector, err = s.embedQuery(ctx, query, monitor)
		if err == nil {
			results, truncated, err = s.hybridSearch(ctx, query, vector, opts, monitor)
		}
	case MethodMMR:
		var vector []float32
		vector, err = s.embedQuery(ctx, query, monitor)
		if err == nil {
			results, err = s.mmrSearch(ctx, vector, opts, monitor)
		}
	case MethodMultiQuery:
		results, truncated, err = s.multiQuerySearch(ctx, query, opts, monitor)
	}

	if err != nil {
		s.logger.Error("search failed", "method", method, "err", err)
		return nil, err
	}

	if results == nil {
		results = []*core.SearchResult{}
	}
	monitor.Finish(results)

	return &Response{Results: results, Truncated: truncated}, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string, monitor SearchMonitor) ([]float32, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)
	return vector, nil
}
