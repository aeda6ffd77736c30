package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 2}))
	})

	t.Run("empty vectors score zero", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine(nil, nil))
	})

	t.Run("scale invariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{2, 4, 6}
		assert.InDelta(t, 1.0, Cosine(a, b), 1e-6)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("unit norm after normalization", func(t *testing.T) {
		normalized := Normalize([]float32{3, 4})
		assert.InDelta(t, 0.6, normalized[0], 1e-6)
		assert.InDelta(t, 0.8, normalized[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		normalized := Normalize([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, normalized)
	})
}

func TestCosineSparse(t *testing.T) {
	t.Run("identical sparse vectors", func(t *testing.T) {
		v := Sparse{Indices: []int32{0, 3, 7}, Values: []float32{1, 2, 3}}
		assert.InDelta(t, 1.0, CosineSparse(v, v), 1e-6)
	})

	t.Run("disjoint supports score zero", func(t *testing.T) {
		a := Sparse{Indices: []int32{0, 1}, Values: []float32{1, 1}}
		b := Sparse{Indices: []int32{2, 3}, Values: []float32{1, 1}}
		assert.Equal(t, float32(0), CosineSparse(a, b))
	})

	t.Run("partial overlap", func(t *testing.T) {
		a := Sparse{Indices: []int32{0, 1}, Values: []float32{1, 0}}
		b := Sparse{Indices: []int32{0, 2}, Values: []float32{1, 0}}
		assert.InDelta(t, 1.0, CosineSparse(a, b), 1e-6)
	})

	t.Run("empty vector scores zero", func(t *testing.T) {
		a := Sparse{Indices: []int32{0}, Values: []float32{1}}
		assert.Equal(t, float32(0), CosineSparse(a, Sparse{}))
	})

	t.Run("matches dense cosine", func(t *testing.T) {
		a := Sparse{Indices: []int32{0, 2}, Values: []float32{1, 2}}
		b := Sparse{Indices: []int32{1, 2}, Values: []float32{3, 4}}
		dense := Cosine([]float32{1, 0, 2}, []float32{0, 3, 4})
		require.InDelta(t, float64(dense), float64(CosineSparse(a, b)), 1e-6)
	})
}

func TestSparseNorm(t *testing.T) {
	v := Sparse{Indices: []int32{1, 5}, Values: []float32{3, 4}}
	assert.InDelta(t, 5.0, v.Norm(), 1e-6)
	assert.Equal(t, 2, v.NNZ())
}
