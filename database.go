// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recall

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
)

// KnowledgeBase bundles the storage backend, repositories, embedding
// provider, and retrieval engine behind one handle.
type KnowledgeBase struct {
	backend   *badger.Backend
	entryRepo storage.EntryRepository
	chunkRepo storage.ChunkRepository
	embedder  ai.Embedder
	searcher  *search.Searcher
	logger    *slog.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*knowledgeBaseOptions)

type knowledgeBaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing provider setup.
func WithEmbedder(embedder ai.Embedder) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the backend without a directory; data is lost on Close.
func WithInMemory() KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewKnowledgeBase(filePath string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	// Apply options
	options := &knowledgeBaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create entry repository
	entryRepo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		entryRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create embedding provider with configured settings
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			entryRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	searcher, err := search.NewSearcher(chunkRepo, embedder, search.WithLogger(options.logger))
	if err != nil {
		chunkRepo.Close()
		entryRepo.Close()
		backend.Close()
		return nil, err
	}

	return &KnowledgeBase{
		backend:   backend,
		entryRepo: entryRepo,
		chunkRepo: chunkRepo,
		embedder:  embedder,
		searcher:  searcher,
		logger:    options.logger,
	}, nil
}

func (kb *KnowledgeBase) Close() error {
	// Close repositories
	if err := kb.chunkRepo.Close(); err != nil {
		kb.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := kb.entryRepo.Close(); err != nil {
		kb.logger.Error("error closing entry repository", "err", err)
		return err
	}

	// Close backend
	if err := kb.backend.Close(); err != nil {
		kb.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (kb *KnowledgeBase) EntryRepository() storage.EntryRepository {
	return kb.entryRepo
}

func (kb *KnowledgeBase) ChunkRepository() storage.ChunkRepository {
	return kb.chunkRepo
}

func (kb *KnowledgeBase) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(kb.entryRepo, kb.chunkRepo, kb.embedder, opts...)
}

func (kb *KnowledgeBase) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(kb.chunkRepo, kb.embedder, opts...)
}

// Ingest runs one document through a short-lived pipeline. Callers with many
// documents should hold a pipeline from NewIngestionPipeline instead.
func (kb *KnowledgeBase) Ingest(ctx context.Context, req ingestion.Request, opts ...ingestion.Option) (*core.EntryReceipt, error) {
	pipeline, err := kb.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	return pipeline.Ingest(ctx, req)
}

// Search runs a query with the shared searcher.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	return kb.searcher.Search(ctx, query, opts)
}

// GetEntry retrieves an entry by ID.
func (kb *KnowledgeBase) GetEntry(ctx context.Context, id core.ID) (*core.Entry, error) {
	return kb.entryRepo.GetEntry(ctx, id)
}

// GetEntryWithChunks retrieves an entry together with its chunks in ordinal
// order.
func (kb *KnowledgeBase) GetEntryWithChunks(ctx context.Context, id core.ID) (*core.Entry, []*core.Chunk, error) {
	entry, err := kb.entryRepo.GetEntry(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := kb.chunkRepo.GetChunksByParent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return entry, chunks, nil
}

// ListEntries returns a page of entries, newest first, plus the total count.
func (kb *KnowledgeBase) ListEntries(ctx context.Context, offset, limit int) ([]*core.Entry, int, error) {
	return kb.entryRepo.ListEntries(ctx, offset, limit)
}

// DeleteEntry removes an entry and all of its chunks. Returns
// storage.ErrNotFound if the entry does not exist; chunks are removed first
// so a partial failure never leaves orphaned chunks behind a live entry.
func (kb *KnowledgeBase) DeleteEntry(ctx context.Context, id core.ID) (int, error) {
	// Existence check up front so a bad ID doesn't silently delete nothing
	if _, err := kb.entryRepo.GetEntry(ctx, id); err != nil {
		return 0, err
	}

	removed, err := kb.chunkRepo.DeleteByParent(ctx, id)
	if err != nil {
		return removed, err
	}

	if err := kb.entryRepo.DeleteEntry(ctx, id); err != nil {
		return removed, err
	}
	return removed, nil
}

// Stats summarizes the stored corpus: entry and chunk counts plus breakdowns
// by strategy, source, and confidence.
func (kb *KnowledgeBase) Stats(ctx context.Context) (*core.Stats, error) {
	stats := &core.Stats{
		ByStrategy:   make(map[string]int),
		BySource:     make(map[string]int),
		ByConfidence: make(map[string]int),
	}

	err := kb.entryRepo.ScanEntries(ctx, func(entry *core.Entry) bool {
		stats.EntryCount++
		stats.ChunkCount += entry.ChunkCount
		stats.ByStrategy[entry.Strategy]++
		if entry.Source != "" {
			stats.BySource[entry.Source]++
		}
		if entry.Confidence != "" {
			stats.ByConfidence[entry.Confidence]++
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	if stats.EntryCount > 0 {
		stats.AvgChunksPerEntry = float64(stats.ChunkCount) / float64(stats.EntryCount)
	}
	return stats, nil
}
