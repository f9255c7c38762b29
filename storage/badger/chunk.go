package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks persists one or more chunks and their parent index keys.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			parentKey := makeChunkParentKey(chunk.ParentId, chunk.Ordinal)
			if err := tx.Set(parentKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunksByParent retrieves all chunks of an entry, ordered by ordinal.
// The parent index keys sort by ordinal, so iteration order is chunk order.
func (r *ChunkRepository) GetChunksByParent(ctx context.Context, parent core.ID) ([]*core.Chunk, error) {
	ids, _, err := r.parentIndex(parent)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(ids))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteByParent removes every chunk owned by the given entry.
func (r *ChunkRepository) DeleteByParent(ctx context.Context, parent core.ID) (int, error) {
	ids, indexKeys, err := r.parentIndex(parent)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
		}
		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// parentIndex collects the chunk IDs and index keys under one parent,
// in ordinal order.
func (r *ChunkRepository) parentIndex(parent core.ID) ([]core.ID, [][]byte, error) {
	var ids []core.ID
	var keys [][]byte
	prefix := makePartialChunkParentKey(parent)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			keys = append(keys, item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, nil, err
	}
	return ids, keys, nil
}

// VectorSearch delegates to the backend scan.
func (r *ChunkRepository) VectorSearch(ctx context.Context, vector []float32, limit int, filter *core.Filter) ([]*storage.ChunkMatch, error) {
	return r.backend.VectorSearch(ctx, vector, limit, filter)
}

// Scan returns up to maxRows filter-matching chunks and reports whether the
// candidate pool was truncated at maxRows.
func (r *ChunkRepository) Scan(ctx context.Context, filter *core.Filter, maxRows int) ([]*core.Chunk, bool, error) {
	var chunks []*core.Chunk
	truncated := false
	prefix := []byte(chunkRecordPrefix + ":")

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if !filter.Matches(chunk) {
				continue
			}
			if maxRows > 0 && len(chunks) == maxRows {
				truncated = true
				return nil
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, false, err
	}
	return chunks, truncated, nil
}

// CountChunks returns the number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	prefix := []byte(chunkRecordPrefix + ":")

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}
