package feature

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/storage/badger"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

type seedConfig struct {
	skipText  bool
	withImage bool
}

func seedRepositories(t *testing.T, cfg seedConfig) (storage.CaseRepository, storage.FeatureRepository, func()) {
	t.Helper()

	caseRepo, featRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	cleanup := func() { backend.Close() }

	ctx := context.Background()
	order := []string{"case_a", "case_b", "case_c"}
	for _, id := range order {
		require.NoError(t, caseRepo.PutCases(ctx, &core.Case{ID: id, Diagnosis: "dx " + id}))
	}
	require.NoError(t, featRepo.PutCaseOrder(ctx, order))

	require.NoError(t, featRepo.PutSparseRows(ctx, storage.SpaceTFIDF, []vector.Sparse{
		{Indices: []int32{0}, Values: []float32{1}},
		{Indices: []int32{1}, Values: []float32{1}},
		{Indices: []int32{0, 1}, Values: []float32{0.7, 0.7}},
	}))

	if !cfg.skipText {
		require.NoError(t, featRepo.PutDenseRows(ctx, storage.SpaceText, [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		}))
	}
	if cfg.withImage {
		require.NoError(t, featRepo.PutDenseRows(ctx, storage.SpaceImage, [][]float32{
			{1, 0},
			{0, 1},
			{1, 1},
		}))
	}

	v, err := tfidf.NewVectorizer(map[string]int32{"fracture": 0, "tumor": 1}, []float32{1, 1})
	require.NoError(t, err)
	require.NoError(t, featRepo.PutVectorizer(ctx, v))

	return caseRepo, featRepo, cleanup
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("loads required spaces", func(t *testing.T) {
		caseRepo, featRepo, cleanup := seedRepositories(t, seedConfig{})
		defer cleanup()

		store, err := Load(ctx, caseRepo, featRepo, logger)
		require.NoError(t, err)

		assert.Equal(t, 3, store.NumCases())
		assert.Len(t, store.TFIDFRows(), 3)
		assert.Len(t, store.TextRows(), 3)
		assert.Equal(t, 3, store.TextDim())
		assert.Equal(t, 2, store.Vectorizer().NumFeatures())
		assert.False(t, store.HasImageEmbeddings())
		assert.Nil(t, store.ImageRows())
		assert.Zero(t, store.ImageDim())
	})

	t.Run("case index follows stored order", func(t *testing.T) {
		caseRepo, featRepo, cleanup := seedRepositories(t, seedConfig{})
		defer cleanup()

		store, err := Load(ctx, caseRepo, featRepo, logger)
		require.NoError(t, err)

		for i, id := range []string{"case_a", "case_b", "case_c"} {
			row, ok := store.CaseIndex(id)
			require.True(t, ok)
			assert.Equal(t, i, row)
			assert.Equal(t, id, store.Case(row).ID)
		}

		_, ok := store.CaseIndex("case_unknown")
		assert.False(t, ok)
	})

	t.Run("image space is optional but validated", func(t *testing.T) {
		caseRepo, featRepo, cleanup := seedRepositories(t, seedConfig{withImage: true})
		defer cleanup()

		store, err := Load(ctx, caseRepo, featRepo, logger)
		require.NoError(t, err)

		assert.True(t, store.HasImageEmbeddings())
		assert.Equal(t, 2, store.ImageDim())
	})

	t.Run("missing text space is fatal", func(t *testing.T) {
		caseRepo, featRepo, cleanup := seedRepositories(t, seedConfig{skipText: true})
		defer cleanup()

		_, err := Load(ctx, caseRepo, featRepo, logger)
		assert.ErrorIs(t, err, storage.ErrSpaceNotFound)
	})

	t.Run("row count mismatch is fatal", func(t *testing.T) {
		caseRepo, featRepo, cleanup := seedRepositories(t, seedConfig{})
		defer cleanup()

		// Grow the case order after matrices were written.
		require.NoError(t, featRepo.PutCaseOrder(ctx, []string{"case_a", "case_b", "case_c", "case_d"}))
		require.NoError(t, caseRepo.PutCases(ctx, &core.Case{ID: "case_d"}))

		_, err := Load(ctx, caseRepo, featRepo, logger)
		assert.ErrorIs(t, err, storage.ErrRowCountMismatch)
	})

	t.Run("empty database is fatal", func(t *testing.T) {
		caseRepo, featRepo, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		_, err = Load(ctx, caseRepo, featRepo, logger)
		assert.Error(t, err)
	})
}
