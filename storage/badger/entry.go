package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &EntryRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *EntryRepository) Close() error {
	return nil
}

// AddEntry persists an entry and its recency index key.
func (r *EntryRepository) AddEntry(ctx context.Context, entry *core.Entry) error {
	if err := core.ValidateEntry(entry); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(entry.Id)
		if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
			return err
		}
		dateKey := makeEntryDateKey(entry.InsertedAt, entry.Id)
		if err := tx.Set(dateKey, storage.MarshalID(entry.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by ID.
func (r *EntryRepository) GetEntry(ctx context.Context, id core.ID) (*core.Entry, error) {
	var entry *core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes an entry and its recency index key.
func (r *EntryRepository) DeleteEntry(ctx context.Context, id core.ID) error {
	entry, err := r.GetEntry(ctx, id)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEntryKey(id)); err != nil {
			return err
		}
		if err := tx.Delete(makeEntryDateKey(entry.InsertedAt, id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListEntries returns a page of entries ordered newest first plus the total count.
func (r *EntryRepository) ListEntries(ctx context.Context, offset, limit int) ([]*core.Entry, int, error) {
	if offset < 0 || limit < 0 {
		return nil, 0, storage.ErrInvalidQuery
	}

	var ids []core.ID
	prefix := []byte(entryDatePrefix + ":")

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible date key, then walk backwards
		seek := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for iter.Seek(seek); iter.ValidForPrefix(prefix); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
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
		return nil, 0, err
	}

	total := len(ids)
	if offset >= total {
		return []*core.Entry{}, total, nil
	}
	end := offset + limit
	if limit == 0 || end > total {
		end = total
	}

	entries := make([]*core.Entry, 0, end-offset)
	for _, id := range ids[offset:end] {
		entry, err := r.GetEntry(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

// ScanEntries iterates all stored entries in key order.
func (r *EntryRepository) ScanEntries(ctx context.Context, fn func(entry *core.Entry) bool) error {
	prefix := []byte(entryRecordPrefix + ":")

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			// The recency index shares no prefix with records, but guard anyway
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				continue
			}

			var entry *core.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if !fn(entry) {
				return nil
			}
		}
		return nil
	}, false)
}
