package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

// FeatureRepository implements storage.FeatureRepository backed by BadgerDB.
type FeatureRepository struct {
	backend *Backend
}

var _ storage.FeatureRepository = (*FeatureRepository)(nil)

// NewFeatureRepository creates a feature repository on top of an open backend.
//
// Returns storage.FeatureRepository interface to enforce abstraction.
func NewFeatureRepository(backend *Backend) (storage.FeatureRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &FeatureRepository{backend: backend}, nil
}

// PutCaseOrder stores the ordered case-id list.
func (r *FeatureRepository) PutCaseOrder(ctx context.Context, ids []string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(caseOrderKey), storage.MarshalCaseOrder(ids)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetCaseOrder retrieves the ordered case-id list.
func (r *FeatureRepository) GetCaseOrder(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(caseOrderKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			ids, err = storage.UnmarshalCaseOrder(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// PutSparseRows stores the rows of a sparse matrix for the given space.
func (r *FeatureRepository) PutSparseRows(ctx context.Context, space string, rows []vector.Sparse) error {
	for start := 0; start < len(rows); start += writeBatchSize {
		end := min(start+writeBatchSize, len(rows))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				if err := tx.Set(makeFeatureRowKey(space, i), storage.MarshalSparseRow(rows[i])); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return fmt.Errorf("put sparse rows %q: %w", space, err)
		}
	}
	return nil
}

// GetSparseRows retrieves all sparse rows for the given space in row order.
func (r *FeatureRepository) GetSparseRows(ctx context.Context, space string) ([]vector.Sparse, error) {
	var rows []vector.Sparse
	err := r.iterateRows(space, func(row int, val []byte) error {
		if row != len(rows) {
			return fmt.Errorf("%w: space %q row %d", storage.ErrRowGap, space, row)
		}
		sparse, err := storage.UnmarshalSparseRow(val)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		rows = append(rows, sparse)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", storage.ErrSpaceNotFound, space)
	}
	return rows, nil
}

// PutDenseRows stores the rows of a dense matrix for the given space.
func (r *FeatureRepository) PutDenseRows(ctx context.Context, space string, rows [][]float32) error {
	for start := 0; start < len(rows); start += writeBatchSize {
		end := min(start+writeBatchSize, len(rows))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				if err := tx.Set(makeFeatureRowKey(space, i), storage.MarshalDenseRow(rows[i])); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return fmt.Errorf("put dense rows %q: %w", space, err)
		}
	}
	return nil
}

// GetDenseRows retrieves all dense rows for the given space in row order.
func (r *FeatureRepository) GetDenseRows(ctx context.Context, space string) ([][]float32, error) {
	var rows [][]float32
	err := r.iterateRows(space, func(row int, val []byte) error {
		if row != len(rows) {
			return fmt.Errorf("%w: space %q row %d", storage.ErrRowGap, space, row)
		}
		dense, err := storage.UnmarshalDenseRow(val)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		rows = append(rows, dense)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", storage.ErrSpaceNotFound, space)
	}
	return rows, nil
}

// HasSpace reports whether any rows exist for the given space.
func (r *FeatureRepository) HasSpace(ctx context.Context, space string) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFeatureRowPrefix(space)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		iter.Rewind()
		found = iter.Valid()
		return nil
	}, false)
	return found, err
}

// PutVectorizer stores the TF-IDF vectorizer artifact.
func (r *FeatureRepository) PutVectorizer(ctx context.Context, v *tfidf.Vectorizer) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(vectorizerKey), storage.MarshalVectorizer(v)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVectorizer retrieves the TF-IDF vectorizer artifact.
func (r *FeatureRepository) GetVectorizer(ctx context.Context) (*tfidf.Vectorizer, error) {
	var result *tfidf.Vectorizer
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(vectorizerKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalVectorizer(val)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutSpaceMetadata stores metadata for an embedding space.
func (r *FeatureRepository) PutSpaceMetadata(ctx context.Context, space string, meta *core.SpaceMetadata) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSpaceMetaKey(space), storage.MarshalSpaceMetadata(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSpaceMetadata retrieves metadata for an embedding space.
func (r *FeatureRepository) GetSpaceMetadata(ctx context.Context, space string) (*core.SpaceMetadata, error) {
	var result *core.SpaceMetadata
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSpaceMetaKey(space))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalSpaceMetadata(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close closes the repository. The underlying backend is shared and closed
// separately.
func (r *FeatureRepository) Close() error {
	return nil
}

// iterateRows walks a space's rows in ascending row order, passing the
// decoded row index and raw value to fn.
func (r *FeatureRepository) iterateRows(space string, fn func(row int, val []byte) error) error {
	prefix := makeFeatureRowPrefix(space)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()
			if len(key) != len(prefix)+8 {
				return fmt.Errorf("%w: malformed row key %q", storage.ErrSerializationFailed, key)
			}
			row := int(binary.BigEndian.Uint64(key[len(prefix):]))
			if err := item.Value(func(val []byte) error { return fn(row, val) }); err != nil {
				return err
			}
		}
		return nil
	}, false)
}
