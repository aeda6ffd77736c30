package storage

import (
	"context"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

// Space names used as storage keys for embedding matrices.
const (
	// SpaceTFIDF holds the sparse TF-IDF rows.
	SpaceTFIDF = "tfidf"
	// SpaceText holds the dense sentence-embedding rows.
	SpaceText = "bert"
	// SpaceImage holds the optional dense image-embedding rows.
	SpaceImage = "image"
)

// CaseRepository provides operations for managing case records.
type CaseRepository interface {
	// PutCases stores one or more case records, keyed by the content hash
	// of their public id. Existing records with the same id are replaced.
	PutCases(ctx context.Context, cases ...*core.Case) error

	// GetCase retrieves a case record by its public id.
	// Returns ErrNotFound if the record doesn't exist.
	GetCase(ctx context.Context, id string) (*core.Case, error)

	// CountCases returns the number of stored case records.
	CountCases(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// FeatureRepository provides operations for managing embedding-space
// artifacts: the ordered case-id list, per-space matrix rows, the TF-IDF
// vectorizer, and per-space metadata.
type FeatureRepository interface {
	// PutCaseOrder stores the ordered case-id list that defines row identity
	// across all embedding spaces.
	PutCaseOrder(ctx context.Context, ids []string) error

	// GetCaseOrder retrieves the ordered case-id list.
	// Returns ErrNotFound if no order has been stored.
	GetCaseOrder(ctx context.Context) ([]string, error)

	// PutSparseRows stores the rows of a sparse matrix for the given space.
	// Row i must correspond to the i-th id in the stored case order.
	PutSparseRows(ctx context.Context, space string, rows []vector.Sparse) error

	// GetSparseRows retrieves all sparse rows for the given space in row order.
	// Returns ErrSpaceNotFound if the space has no rows.
	GetSparseRows(ctx context.Context, space string) ([]vector.Sparse, error)

	// PutDenseRows stores the rows of a dense matrix for the given space.
	PutDenseRows(ctx context.Context, space string, rows [][]float32) error

	// GetDenseRows retrieves all dense rows for the given space in row order.
	// Returns ErrSpaceNotFound if the space has no rows.
	GetDenseRows(ctx context.Context, space string) ([][]float32, error)

	// HasSpace reports whether any rows exist for the given space.
	HasSpace(ctx context.Context, space string) (bool, error)

	// PutVectorizer stores the TF-IDF vectorizer artifact. Vocabulary and
	// IDF weights travel as a single blob so they can never come apart.
	PutVectorizer(ctx context.Context, v *tfidf.Vectorizer) error

	// GetVectorizer retrieves the TF-IDF vectorizer artifact.
	// Returns ErrNotFound if none has been stored.
	GetVectorizer(ctx context.Context) (*tfidf.Vectorizer, error)

	// PutSpaceMetadata stores metadata for an embedding space.
	PutSpaceMetadata(ctx context.Context, space string, meta *core.SpaceMetadata) error

	// GetSpaceMetadata retrieves metadata for an embedding space.
	// Returns ErrNotFound if none has been stored.
	GetSpaceMetadata(ctx context.Context, space string) (*core.SpaceMetadata, error)

	// Close closes the repository and releases resources.
	Close() error
}
