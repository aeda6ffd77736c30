package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/vector"
)

var denseMatrix = [][]float32{
	{1, 0},
	{0.9, 0.1},
	{0, 1},
	{0.9, 0.1}, // duplicate of row 1, exercises tie-breaking
}

func TestRankCosine(t *testing.T) {
	t.Run("descending scores", func(t *testing.T) {
		hits := RankCosine([]float32{1, 0}, denseMatrix, 4, -1)
		require.Len(t, hits, 4)
		for i := 1; i < len(hits); i++ {
			assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
		}
		assert.Equal(t, 0, hits[0].Index)
	})

	t.Run("scores within range", func(t *testing.T) {
		hits := RankCosine([]float32{0.5, 0.5}, denseMatrix, 4, -1)
		for _, h := range hits {
			assert.GreaterOrEqual(t, h.Score, float32(-1))
			assert.LessOrEqual(t, h.Score, float32(1))
		}
	})

	t.Run("ties keep row order", func(t *testing.T) {
		hits := RankCosine([]float32{1, 0}, denseMatrix, 4, -1)
		// Rows 1 and 3 are identical; row 1 must come first.
		var tied []int
		for _, h := range hits {
			if h.Index == 1 || h.Index == 3 {
				tied = append(tied, h.Index)
			}
		}
		assert.Equal(t, []int{1, 3}, tied)
	})

	t.Run("truncates to k", func(t *testing.T) {
		hits := RankCosine([]float32{1, 0}, denseMatrix, 2, -1)
		assert.Len(t, hits, 2)
	})

	t.Run("exclude removes exactly one row", func(t *testing.T) {
		hits := RankCosine(denseMatrix[0], denseMatrix, 10, 0)
		assert.Len(t, hits, 3)
		for _, h := range hits {
			assert.NotEqual(t, 0, h.Index)
		}
	})

	t.Run("negative exclude ranks all rows", func(t *testing.T) {
		hits := RankCosine(denseMatrix[0], denseMatrix, 10, -1)
		assert.Len(t, hits, 4)
	})
}

func TestRankCosineSparse(t *testing.T) {
	matrix := []vector.Sparse{
		{Indices: []int32{0}, Values: []float32{1}},
		{Indices: []int32{1}, Values: []float32{1}},
		{Indices: []int32{0, 1}, Values: []float32{0.7, 0.7}},
	}

	hits := RankCosineSparse(matrix[0], matrix, 2, 0)
	require.Len(t, hits, 2)
	assert.Equal(t, 2, hits[0].Index)
	assert.Equal(t, 1, hits[1].Index)
}

func TestRankHybrid(t *testing.T) {
	textMatrix := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
	}
	imageMatrix := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	}
	textQuery := []float32{1, 0}
	imageQuery := []float32{1, 0}

	t.Run("weight one matches text-only ranking", func(t *testing.T) {
		hybrid := RankHybrid(textQuery, imageQuery, textMatrix, imageMatrix, 3, 1.0, -1)
		text := RankCosine(textQuery, textMatrix, 3, -1)
		require.Len(t, hybrid, len(text))
		for i := range hybrid {
			assert.Equal(t, text[i].Index, hybrid[i].Index)
			assert.InDelta(t, float64(text[i].Score), float64(hybrid[i].Combined), 1e-6)
		}
	})

	t.Run("weight zero matches image-only ranking", func(t *testing.T) {
		hybrid := RankHybrid(textQuery, imageQuery, textMatrix, imageMatrix, 3, 0.0, -1)
		image := RankCosine(imageQuery, imageMatrix, 3, -1)
		require.Len(t, hybrid, len(image))
		for i := range hybrid {
			assert.Equal(t, image[i].Index, hybrid[i].Index)
			assert.InDelta(t, float64(image[i].Score), float64(hybrid[i].Combined), 1e-6)
		}
	})

	t.Run("combined is the weighted sum of components", func(t *testing.T) {
		hits := RankHybrid(textQuery, imageQuery, textMatrix, imageMatrix, 3, 0.7, -1)
		for _, h := range hits {
			expected := 0.7*h.Text + 0.3*h.Image
			assert.InDelta(t, float64(expected), float64(h.Combined), 1e-6)
		}
	})

	t.Run("exclusion and truncation", func(t *testing.T) {
		hits := RankHybrid(textQuery, imageQuery, textMatrix, imageMatrix, 1, 0.5, 2)
		require.Len(t, hits, 1)
		assert.NotEqual(t, 2, hits[0].Index)
	})
}
