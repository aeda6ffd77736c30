package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareFeatures(t *testing.T) {
	cases := []RefinedCase{
		{ComplexityScore: 2, BodySystem: "neuro", HasMultipleImages: true},
		{ComplexityScore: 4, BodySystem: "cardiac", HasMultipleImages: false},
		{ComplexityScore: 6, BodySystem: "neuro", HasMultipleImages: true},
	}

	t.Run("numeric, categorical and boolean columns", func(t *testing.T) {
		m, err := PrepareFeatures(cases, DefaultFeatures)
		require.NoError(t, err)

		assert.Equal(t, DefaultFeatures, m.Names)
		require.Len(t, m.Rows, 3)
		// cardiac < neuro alphabetically, so cardiac encodes to 0.
		assert.Equal(t, []float64{2, 1, 1}, m.Rows[0])
		assert.Equal(t, []float64{4, 0, 0}, m.Rows[1])
		assert.Equal(t, []float64{6, 1, 1}, m.Rows[2])
	})

	t.Run("unknown feature names are skipped", func(t *testing.T) {
		m, err := PrepareFeatures(cases, []string{"nope", FeatureComplexityScore})
		require.NoError(t, err)
		assert.Equal(t, []string{FeatureComplexityScore}, m.Names)
		assert.Len(t, m.Rows[0], 1)
	})

	t.Run("no valid features", func(t *testing.T) {
		_, err := PrepareFeatures(cases, []string{"nope"})
		assert.ErrorIs(t, err, ErrNoValidFeatures)
	})

	t.Run("no data", func(t *testing.T) {
		_, err := PrepareFeatures(nil, DefaultFeatures)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestLabelEncode(t *testing.T) {
	codes := labelEncode([]string{"msk", "cardiac", "neuro", "cardiac"})
	assert.Equal(t, []int{1, 0, 2, 0}, codes)
}
