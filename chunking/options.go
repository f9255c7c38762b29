package chunking

// Strategy selects how text is split into chunks.
type Strategy string

const (
	// StrategyFixed slides a fixed character window with a small overlap.
	StrategyFixed Strategy = "fixed"
	// StrategySentence groups a fixed number of sentences per chunk.
	StrategySentence Strategy = "sentence"
	// StrategyParagraph splits on blank lines, merging short paragraphs.
	StrategyParagraph Strategy = "paragraph"
	// StrategySliding produces overlapping windows stepped by a stride.
	StrategySliding Strategy = "sliding"
	// StrategySemantic breaks at semantic shifts between sentences.
	// It is the only strategy that requires an embedding provider; use
	// SplitSemantic rather than Split.
	StrategySemantic Strategy = "semantic"
	// StrategyRecursive splits headers -> paragraphs -> sentences, recursing
	// only as deep as needed to stay under a maximum chunk size.
	StrategyRecursive Strategy = "recursive"
)

// Hierarchy level labels carried by recursive chunks.
const (
	LevelSection   = "section"
	LevelParagraph = "paragraph"
	LevelSentence  = "sentence"
)

// ParseStrategy maps a strategy name to a Strategy.
// Unknown names report ok=false.
func ParseStrategy(name string) (Strategy, bool) {
	switch Strategy(name) {
	case StrategyFixed, StrategySentence, StrategyParagraph,
		StrategySliding, StrategySemantic, StrategyRecursive:
		return Strategy(name), true
	}
	return "", false
}

// Options holds tuning parameters shared across strategies. Zero values are
// replaced by defaults, so the zero Options is usable.
type Options struct {
	// ChunkSize is the window length in runes for fixed and sliding. Default 512.
	ChunkSize int
	// Overlap is the fixed-strategy window overlap in runes. Default 50.
	Overlap int
	// Stride is the sliding-strategy step in runes. Default 256.
	Stride int
	// SentencesPerChunk groups N sentences per chunk for sentence. Default 3.
	SentencesPerChunk int
	// MinParagraphLength is the merge threshold for paragraph. Paragraphs
	// shorter than this are merged into the running buffer until it would
	// exceed MinParagraphLength*10. Heuristic, not a derived bound. Default 100.
	MinParagraphLength int
	// SimilarityThreshold starts a new semantic chunk when cosine similarity
	// to the previous sentence drops below it. Default 0.5. Zero is a valid
	// split-on-negative-similarity setting when SimilarityThresholdSet is
	// true.
	SimilarityThreshold float32
	// SimilarityThresholdSet marks SimilarityThreshold as explicitly chosen,
	// so a zero threshold is honored instead of defaulted.
	SimilarityThresholdSet bool
	// MaxChunkSize bounds recursive chunks in runes. Default 1000.
	MaxChunkSize int
}

// Default option values.
const (
	DefaultChunkSize           = 512
	DefaultOverlap             = 50
	DefaultStride              = 256
	DefaultSentencesPerChunk   = 3
	DefaultMinParagraphLength  = 100
	DefaultSimilarityThreshold = 0.5
	DefaultMaxChunkSize        = 1000
)

// DefaultOptions returns the documented default tuning parameters.
func DefaultOptions() Options {
	return Options{
		ChunkSize:           DefaultChunkSize,
		Overlap:             DefaultOverlap,
		Stride:              DefaultStride,
		SentencesPerChunk:   DefaultSentencesPerChunk,
		MinParagraphLength:  DefaultMinParagraphLength,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxChunkSize:        DefaultMaxChunkSize,
	}
}

// normalized fills zero values with defaults and clamps nonsense.
func (o Options) normalized() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 || o.Overlap >= o.ChunkSize {
		o.Overlap = DefaultOverlap
		if o.Overlap >= o.ChunkSize {
			o.Overlap = o.ChunkSize / 4
		}
	}
	if o.Stride <= 0 {
		o.Stride = DefaultStride
	}
	if o.Stride > o.ChunkSize {
		o.Stride = o.ChunkSize
	}
	if o.SentencesPerChunk <= 0 {
		o.SentencesPerChunk = DefaultSentencesPerChunk
	}
	if o.MinParagraphLength <= 0 {
		o.MinParagraphLength = DefaultMinParagraphLength
	}
	if o.SimilarityThreshold < 0 || (o.SimilarityThreshold == 0 && !o.SimilarityThresholdSet) {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = DefaultMaxChunkSize
	}
	return o
}
