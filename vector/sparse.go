package vector

import "math"

// Sparse is a sparse vector in coordinate form: Indices holds the non-zero
// columns in strictly ascending order and Values the matching entries.
// The zero value is a valid empty vector.
type Sparse struct {
	Indices []int32
	Values  []float32
}

// NNZ returns the number of non-zero entries.
func (s Sparse) NNZ() int {
	return len(s.Values)
}

// Norm returns the L2 norm of the vector.
func (s Sparse) Norm() float32 {
	var sum float64
	for _, v := range s.Values {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum))
}

// CosineSparse calculates the cosine similarity between two sparse vectors
// by merging their index lists. Returns 0 when either vector is zero.
func CosineSparse(a, b Sparse) float32 {
	if len(a.Values) == 0 || len(b.Values) == 0 {
		return 0
	}

	var dot, na, nb float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	for _, v := range a.Values {
		na += float64(v) * float64(v)
	}
	for _, v := range b.Values {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
