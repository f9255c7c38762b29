package ingestion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/chunking"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	defaultConcurrency    = 4
	defaultBatchSize      = 16
	defaultEmbedAttempts  = 2
	defaultEmbedBaseDelay = 500 * time.Millisecond
)

// Pipeline orchestrates ingestion: chunking, batch embedding through a
// bounded worker pool, and persisting chunks and the owning entry.
type Pipeline struct {
	entryRepository storage.EntryRepository
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	pool            *ants.Pool
	batchSize       int
	dimension       int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConcurrency sets the worker pool size for concurrent embedding calls.
// Default is 4; values below 1 are clamped to 1.
func WithConcurrency(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts are sent per provider call.
// Default is 16.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithDimension sets the embedding dimension enforced on provider output.
// Zero disables the check. Default is 768.
func WithDimension(dimension int) Option {
	return func(p *Pipeline) error {
		p.dimension = dimension
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	entryRepository storage.EntryRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if entryRepository == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(defaultConcurrency)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		entryRepository: entryRepository,
		chunkRepository: chunkRepository,
		embedder:        embedder,
		pool:            pool,
		batchSize:       defaultBatchSize,
		dimension:       768,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Request describes one document to ingest.
type Request struct {
	Text        string
	Title       string
	Source      string
	Confidence  string
	Tags        []string
	ContentType string
	Strategy    chunking.Strategy
	Options     chunking.Options
}

// Ingest chunks the text, embeds every chunk, and persists the chunk batch
// followed by the owning entry, all sharing one fresh parent id and one
// ingestion timestamp.
//
// An embedding failure aborts the whole ingestion before anything is
// written. A store failure after embedding is surfaced as-is; embedded
// vectors are not cached for retry, so the caller must re-ingest.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*core.EntryReceipt, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, core.ErrEmptyInput
	}
	if req.Strategy == "" {
		req.Strategy = chunking.StrategyFixed
	}

	pieces, err := p.split(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, core.ErrNoChunks
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	p.logger.Debug("embedding chunks", "chunks", len(texts), "strategy", req.Strategy)
	be, err := newBatchEmbedder(p.embedder, p.pool, p.batchSize, p.dimension, p.logger)
	if err != nil {
		return nil, err
	}
	vectors, err := be.embedAll(ctx, texts)
	if err != nil {
		p.logger.Error("error embedding chunk batch", "err", err)
		return nil, err
	}

	now := time.Now().UTC()
	parent := core.EntryID(req.Source, req.Text, now)

	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &core.Chunk{
			Id:          core.ChunkID(parent, i, piece.Text),
			ParentId:    parent,
			Text:        piece.Text,
			Vector:      vectors[i],
			Ordinal:     i,
			Siblings:    len(pieces),
			Strategy:    string(req.Strategy),
			Level:       piece.Level,
			Heading:     piece.Heading,
			Title:       req.Title,
			Source:      req.Source,
			Confidence:  req.Confidence,
			Tags:        req.Tags,
			ContentType: req.ContentType,
			InsertedAt:  now,
			UpdatedAt:   now,
		}
	}

	entry := &core.Entry{
		Id:          parent,
		Title:       req.Title,
		Text:        req.Text,
		Source:      req.Source,
		Confidence:  req.Confidence,
		Tags:        req.Tags,
		ContentType: req.ContentType,
		Strategy:    string(req.Strategy),
		ChunkCount:  len(chunks),
		InsertedAt:  now,
		UpdatedAt:   now,
	}

	if err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		p.logger.Error("error persisting chunks", "entry", parent, "chunks", len(chunks), "err", err)
		return nil, err
	}
	if err := p.entryRepository.AddEntry(ctx, entry); err != nil {
		p.logger.Error("error persisting entry", "entry", parent, "err", err)
		return nil, err
	}

	p.logger.Info("ingested entry", "entry", parent, "chunks", len(chunks), "strategy", req.Strategy)

	return &core.EntryReceipt{
		Id:         entry.Id,
		Title:      entry.Title,
		ChunkCount: entry.ChunkCount,
		Strategy:   entry.Strategy,
		Source:     entry.Source,
		Confidence: entry.Confidence,
		Tags:       entry.Tags,
		InsertedAt: entry.InsertedAt,
	}, nil
}

// split dispatches to the pure chunker, or to the effectful semantic one.
func (p *Pipeline) split(ctx context.Context, req Request) ([]chunking.Piece, error) {
	if req.Strategy == chunking.StrategySemantic {
		return chunking.SplitSemantic(ctx, p.embedder, req.Text, req.Options)
	}
	return chunking.Split(req.Text, req.Strategy, req.Options)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
