package storage

import (
	"context"

	"github.com/poiesic/recall/core"
)

// ChunkMatch is a chunk returned by vector search together with its cosine
// distance from the query vector (0 = identical direction).
type ChunkMatch struct {
	Chunk    *core.Chunk
	Distance float32
}

// Repository provides operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the repository and releases resources.
	Close() error
}

// EntryRepository provides operations for managing whole ingested documents.
type EntryRepository interface {
	Repository

	// AddEntry persists an entry. The entry carries its own content-derived ID
	// and timestamps set by the caller.
	AddEntry(ctx context.Context, entry *core.Entry) error

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.Entry, error)

	// DeleteEntry removes an entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	// Chunks are owned by the chunk repository and must be deleted separately.
	DeleteEntry(ctx context.Context, id core.ID) error

	// ListEntries returns a page of entries ordered by insertion time, newest
	// first, together with the total entry count.
	ListEntries(ctx context.Context, offset, limit int) ([]*core.Entry, int, error)

	// ScanEntries iterates all entries, invoking fn for each.
	// Iteration stops early if fn returns false.
	ScanEntries(ctx context.Context, fn func(entry *core.Entry) bool) error
}

// ChunkRepository provides operations for managing document fragments.
type ChunkRepository interface {
	Repository

	// AddChunks persists one or more chunks. Chunks carry their own IDs and
	// timestamps set by the caller.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunksByParent retrieves all chunks of an entry, ordered by ordinal.
	GetChunksByParent(ctx context.Context, parent core.ID) ([]*core.Chunk, error)

	// DeleteByParent removes all chunks owned by the given entry.
	// Returns the number of chunks removed; zero is not an error.
	DeleteByParent(ctx context.Context, parent core.ID) (int, error)

	// VectorSearch returns up to limit chunks nearest to the query vector
	// under the filter, ordered by ascending cosine distance.
	VectorSearch(ctx context.Context, vector []float32, limit int, filter *core.Filter) ([]*ChunkMatch, error)

	// Scan returns up to maxRows filter-matching chunks. The second return
	// reports whether the scan was truncated at maxRows.
	Scan(ctx context.Context, filter *core.Filter, maxRows int) ([]*core.Chunk, bool, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
