package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
)

// writeBatchSize bounds the number of records per write transaction to stay
// under BadgerDB's transaction size limits.
const writeBatchSize = 500

// CaseRepository implements storage.CaseRepository backed by BadgerDB.
type CaseRepository struct {
	backend *Backend
}

var _ storage.CaseRepository = (*CaseRepository)(nil)

// NewCaseRepository creates a case repository on top of an open backend.
//
// Returns storage.CaseRepository interface to enforce abstraction.
func NewCaseRepository(backend *Backend) (storage.CaseRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CaseRepository{backend: backend}, nil
}

// PutCases stores one or more case records, keyed by the content hash of
// their public id.
func (r *CaseRepository) PutCases(ctx context.Context, cases ...*core.Case) error {
	for start := 0; start < len(cases); start += writeBatchSize {
		end := min(start+writeBatchSize, len(cases))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, c := range cases[start:end] {
				if err := core.ValidateCase(c); err != nil {
					return err
				}
				key := makeCaseRecordKey(core.KeyFromCaseID(c.ID))
				if err := tx.Set(key, storage.MarshalCase(c)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return fmt.Errorf("put cases: %w", err)
		}
	}
	return nil
}

// GetCase retrieves a case record by its public id.
func (r *CaseRepository) GetCase(ctx context.Context, id string) (*core.Case, error) {
	var result *core.Case
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCaseRecordKey(core.KeyFromCaseID(id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalCase(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CountCases returns the number of stored case records.
func (r *CaseRepository) CountCases(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(caseRecordPrefix + ":")
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

// Close closes the repository. The underlying backend is shared and closed
// separately.
func (r *CaseRepository) Close() error {
	return nil
}
