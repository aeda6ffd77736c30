package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
)

func TestCaseRepository(t *testing.T) {
	caseRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		stored := &core.Case{
			ID:         "case_1",
			Title:      "Distal radius fracture",
			Diagnosis:  "Colles fracture",
			PatientAge: 67,
			Modalities: []string{"XR"},
			ImageCount: 3,
		}
		require.NoError(t, caseRepo.PutCases(ctx, stored))

		got, err := caseRepo.GetCase(ctx, "case_1")
		require.NoError(t, err)
		assert.Equal(t, stored.Title, got.Title)
		assert.Equal(t, stored.Diagnosis, got.Diagnosis)
		assert.Equal(t, stored.PatientAge, got.PatientAge)
		assert.Equal(t, stored.Modalities, got.Modalities)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := caseRepo.GetCase(ctx, "case_missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("put replaces existing record", func(t *testing.T) {
		require.NoError(t, caseRepo.PutCases(ctx, &core.Case{ID: "case_1", Diagnosis: "Smith fracture"}))

		got, err := caseRepo.GetCase(ctx, "case_1")
		require.NoError(t, err)
		assert.Equal(t, "Smith fracture", got.Diagnosis)
	})

	t.Run("put rejects invalid case", func(t *testing.T) {
		err := caseRepo.PutCases(ctx, &core.Case{})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("count", func(t *testing.T) {
		require.NoError(t, caseRepo.PutCases(ctx,
			&core.Case{ID: "case_2"},
			&core.Case{ID: "case_3"},
		))

		count, err := caseRepo.CountCases(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
