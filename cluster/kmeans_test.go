package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobMatrix builds two tight groups far apart in both columns, so k=2
// has an unambiguous optimum.
func blobMatrix() *Matrix {
	return &Matrix{
		Names: []string{FeatureComplexityScore, FeatureTitleLength},
		Rows: [][]float64{
			{1.0, 1.1},
			{1.1, 0.9},
			{0.9, 1.0},
			{10.0, 10.2},
			{10.1, 9.9},
			{9.9, 10.0},
		},
	}
}

func TestKMeans(t *testing.T) {
	t.Run("separates well formed blobs", func(t *testing.T) {
		result, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 2, Seed: 42})
		require.NoError(t, err)

		require.Len(t, result.Labels, 6)
		assert.Equal(t, result.Labels[0], result.Labels[1])
		assert.Equal(t, result.Labels[0], result.Labels[2])
		assert.Equal(t, result.Labels[3], result.Labels[4])
		assert.Equal(t, result.Labels[3], result.Labels[5])
		assert.NotEqual(t, result.Labels[0], result.Labels[3])
	})

	t.Run("centers are reported in the original scale", func(t *testing.T) {
		result, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 2, Seed: 42})
		require.NoError(t, err)

		require.Len(t, result.Centers, 2)
		for _, center := range result.Centers {
			// Each center sits near one blob mean, (1,1) or (10,10).
			near := func(v float64) bool {
				return (v > 0.5 && v < 1.5) || (v > 9.5 && v < 10.5)
			}
			assert.True(t, near(center[0]), "center %v not near a blob", center)
			assert.True(t, near(center[1]), "center %v not near a blob", center)
		}
	})

	t.Run("fixed seed is reproducible", func(t *testing.T) {
		first, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 2, Seed: 7})
		require.NoError(t, err)
		second, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 2, Seed: 7})
		require.NoError(t, err)

		assert.Equal(t, first.Labels, second.Labels)
		assert.Equal(t, first.Inertia, second.Inertia)
	})

	t.Run("silhouette for multiple clusters", func(t *testing.T) {
		result, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 2, Seed: 42})
		require.NoError(t, err)
		require.NotNil(t, result.Silhouette)
		// Tight, distant blobs score close to 1.
		assert.Greater(t, *result.Silhouette, 0.8)
	})

	t.Run("no silhouette for a single cluster", func(t *testing.T) {
		result, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 1, Seed: 42})
		require.NoError(t, err)
		assert.Nil(t, result.Silhouette)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, result.Labels)
	})

	t.Run("cluster count out of range", func(t *testing.T) {
		_, err := KMeans(blobMatrix(), KMeansConfig{NumClusters: 0, Seed: 42})
		assert.ErrorIs(t, err, ErrBadClusterCount)

		_, err = KMeans(blobMatrix(), KMeansConfig{NumClusters: 7, Seed: 42})
		assert.ErrorIs(t, err, ErrBadClusterCount)
	})
}

func TestStandardize(t *testing.T) {
	t.Run("zero mean unit variance", func(t *testing.T) {
		scaled, means, stds := standardize([][]float64{{1, 5}, {3, 5}, {5, 5}})

		assert.InDelta(t, 3.0, means[0], 1e-9)
		assert.InDelta(t, (scaled[0][0]+scaled[1][0]+scaled[2][0])/3, 0, 1e-9)
		// Constant columns keep std 1 so scaling is a no-op shift.
		assert.Equal(t, 1.0, stds[1])
		assert.Equal(t, 0.0, scaled[0][1])
	})
}

func TestSilhouette(t *testing.T) {
	rows := [][]float64{{0}, {0.1}, {10}, {10.1}}
	labels := []int{0, 0, 1, 1}
	assert.Greater(t, silhouette(rows, labels, 2), 0.9)

	// A point grouped with the far blob drags the mean down.
	bad := []int{0, 1, 1, 1}
	assert.Less(t, silhouette(rows, bad, 2), silhouette(rows, labels, 2))
}
