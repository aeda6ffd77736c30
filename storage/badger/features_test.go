package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

func TestFeatureRepository_CaseOrder(t *testing.T) {
	_, featRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("missing order", func(t *testing.T) {
		_, err := featRepo.GetCaseOrder(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("roundtrip preserves order", func(t *testing.T) {
		order := []string{"case_3", "case_1", "case_2"}
		require.NoError(t, featRepo.PutCaseOrder(ctx, order))

		got, err := featRepo.GetCaseOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, order, got)
	})
}

func TestFeatureRepository_SparseRows(t *testing.T) {
	_, featRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("missing space", func(t *testing.T) {
		_, err := featRepo.GetSparseRows(ctx, storage.SpaceTFIDF)
		assert.ErrorIs(t, err, storage.ErrSpaceNotFound)
	})

	t.Run("roundtrip preserves row order", func(t *testing.T) {
		rows := []vector.Sparse{
			{Indices: []int32{0, 5}, Values: []float32{0.5, 0.5}},
			{Indices: []int32{2}, Values: []float32{1}},
			{},
		}
		require.NoError(t, featRepo.PutSparseRows(ctx, storage.SpaceTFIDF, rows))

		got, err := featRepo.GetSparseRows(ctx, storage.SpaceTFIDF)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, rows[0].Indices, got[0].Indices)
		assert.Equal(t, rows[0].Values, got[0].Values)
		assert.Equal(t, rows[1].Indices, got[1].Indices)
		assert.Zero(t, got[2].NNZ())
	})
}

func TestFeatureRepository_DenseRows(t *testing.T) {
	_, featRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("missing space", func(t *testing.T) {
		_, err := featRepo.GetDenseRows(ctx, storage.SpaceText)
		assert.ErrorIs(t, err, storage.ErrSpaceNotFound)
	})

	t.Run("roundtrip", func(t *testing.T) {
		rows := [][]float32{{1, 2, 3}, {4, 5, 6}}
		require.NoError(t, featRepo.PutDenseRows(ctx, storage.SpaceText, rows))

		got, err := featRepo.GetDenseRows(ctx, storage.SpaceText)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("spaces are isolated", func(t *testing.T) {
		has, err := featRepo.HasSpace(ctx, storage.SpaceImage)
		require.NoError(t, err)
		assert.False(t, has)

		has, err = featRepo.HasSpace(ctx, storage.SpaceText)
		require.NoError(t, err)
		assert.True(t, has)
	})
}

func TestFeatureRepository_Vectorizer(t *testing.T) {
	_, featRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("missing vectorizer", func(t *testing.T) {
		_, err := featRepo.GetVectorizer(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("roundtrip preserves vocabulary and weights", func(t *testing.T) {
		v, err := tfidf.NewVectorizer(map[string]int32{"femur": 0, "tibia": 1}, []float32{1.5, 2.5})
		require.NoError(t, err)
		require.NoError(t, featRepo.PutVectorizer(ctx, v))

		got, err := featRepo.GetVectorizer(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, got.NumFeatures())

		// The loaded vectorizer must encode identically.
		assert.Equal(t, v.Transform("femur tibia"), got.Transform("femur tibia"))
	})
}

func TestFeatureRepository_SpaceMetadata(t *testing.T) {
	_, featRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("missing metadata", func(t *testing.T) {
		_, err := featRepo.GetSpaceMetadata(ctx, storage.SpaceText)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("roundtrip", func(t *testing.T) {
		meta := &core.SpaceMetadata{
			ModelName:        "all-MiniLM-L6-v2",
			NumFeatures:      384,
			MeanSimilarity:   0.31,
			MedianSimilarity: 0.29,
		}
		require.NoError(t, featRepo.PutSpaceMetadata(ctx, storage.SpaceText, meta))

		got, err := featRepo.GetSpaceMetadata(ctx, storage.SpaceText)
		require.NoError(t, err)
		assert.Equal(t, meta, got)
	})
}
