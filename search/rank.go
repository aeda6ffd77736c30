package search

import (
	"sort"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/vector"
)

// RankCosine scores every row of a dense matrix against the query and
// returns the top k hits by descending cosine similarity. Ties keep the
// original row order. A row index equal to exclude is skipped before
// selection; pass a negative exclude to rank all rows.
func RankCosine(query []float32, matrix [][]float32, k, exclude int) []core.Hit {
	hits := make([]core.Hit, 0, len(matrix))
	for i, row := range matrix {
		if i == exclude {
			continue
		}
		hits = append(hits, core.Hit{Index: i, Score: vector.Cosine(query, row)})
	}
	return topK(hits, k)
}

// RankCosineSparse is RankCosine over a sparse matrix.
func RankCosineSparse(query vector.Sparse, matrix []vector.Sparse, k, exclude int) []core.Hit {
	hits := make([]core.Hit, 0, len(matrix))
	for i := range matrix {
		if i == exclude {
			continue
		}
		hits = append(hits, core.Hit{Index: i, Score: vector.CosineSparse(query, matrix[i])})
	}
	return topK(hits, k)
}

// RankHybrid scores every row by the weighted combination
// textWeight*text + (1-textWeight)*image and returns the top k hits on the
// combined score. Both matrices must have the same row count; per-component
// scores are preserved on each hit.
func RankHybrid(textQuery, imageQuery []float32, textMatrix, imageMatrix [][]float32, k int, textWeight float32, exclude int) []core.HybridHit {
	hits := make([]core.HybridHit, 0, len(textMatrix))
	for i := range textMatrix {
		if i == exclude {
			continue
		}
		text := vector.Cosine(textQuery, textMatrix[i])
		image := vector.Cosine(imageQuery, imageMatrix[i])
		hits = append(hits, core.HybridHit{
			Index:    i,
			Combined: textWeight*text + (1-textWeight)*image,
			Text:     text,
			Image:    image,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Combined > hits[j].Combined
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// topK sorts hits by descending score, stable so equal scores keep row
// order, and truncates to k.
func topK(hits []core.Hit, k int) []core.Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
