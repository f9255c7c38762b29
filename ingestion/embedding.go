package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/ai"
)

// batchEmbedder generates embeddings for chunk texts through a bounded
// worker pool. Embedding is the dominant latency cost of ingestion, so
// provider calls are pipelined: texts are cut into batches and at most
// pool-size batches are in flight at once.
type batchEmbedder struct {
	embedder    ai.Embedder
	pool        *ants.Pool
	batchSize   int
	dimension   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

func newBatchEmbedder(embedder ai.Embedder, pool *ants.Pool, batchSize, dimension int, logger *slog.Logger) (*batchEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &batchEmbedder{
		embedder:    embedder,
		pool:        pool,
		batchSize:   batchSize,
		dimension:   dimension,
		maxAttempts: defaultEmbedAttempts,
		baseDelay:   defaultEmbedBaseDelay,
		logger:      logger.With("component", "batch-embedder"),
	}, nil
}

// embedAll returns one vector per input text, in input order.
// The first provider failure cancels the remaining work and is returned;
// batches already in flight may still complete but their results are
// discarded. Each provider call is retried with bounded backoff.
func (be *batchEmbedder) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(texts))
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(texts); start += be.batchSize {
		// Stop issuing new work once cancelled
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		end := start + be.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batchStart, batch := start, texts[start:end]

		wg.Add(1)
		err := be.pool.Submit(func() {
			defer wg.Done()

			var result [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				result, embedErr = be.embedder.EmbedTexts(ctx, batch)
				return embedErr
			}, be.maxAttempts, be.baseDelay)
			if err != nil {
				be.logger.Error("error embedding batch", "start", batchStart, "size", len(batch), "err", err)
				fail(err)
				return
			}
			if len(result) != len(batch) {
				fail(ErrEmbeddingCountMismatch)
				return
			}
			if err := ai.CheckDimension(result, be.dimension); err != nil {
				fail(err)
				return
			}
			copy(vectors[batchStart:], result)
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
