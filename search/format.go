package search

import (
	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/feature"
)

// FormatHits maps ranked hits to case-shaped results. Rank is assigned
// 1-based from result order, so it stays contiguous regardless of which
// rows were excluded during ranking.
func FormatHits(store *feature.Store, hits []core.Hit) []core.SimilarCase {
	results := make([]core.SimilarCase, len(hits))
	for i, hit := range hits {
		results[i] = formatCase(store.Case(hit.Index), hit.Score, i+1)
	}
	return results
}

// FormatHybridHits maps hybrid hits to case-shaped results carrying the
// per-component scores alongside the combined similarity.
func FormatHybridHits(store *feature.Store, hits []core.HybridHit) []core.HybridSimilarCase {
	results := make([]core.HybridSimilarCase, len(hits))
	for i, hit := range hits {
		results[i] = core.HybridSimilarCase{
			SimilarCase:     formatCase(store.Case(hit.Index), hit.Combined, i+1),
			TextSimilarity:  hit.Text,
			ImageSimilarity: hit.Image,
		}
	}
	return results
}

func formatCase(c *core.Case, score float32, rank int) core.SimilarCase {
	return core.SimilarCase{
		ID:         c.ID,
		Diagnosis:  c.Diagnosis,
		History:    c.History,
		Findings:   c.Findings,
		ImageCount: c.ImageCount,
		ImagePaths: c.ImagePaths,
		Similarity: score,
		Rank:       rank,
	}
}
