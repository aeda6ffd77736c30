package cluster

import "math"

// silhouette computes the mean silhouette coefficient over all samples on
// the scaled features, using euclidean distance. Samples alone in their
// cluster contribute zero.
func silhouette(rows [][]float64, labels []int, k int) float64 {
	n := len(rows)
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	total := 0.0
	perCluster := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := range perCluster {
			perCluster[c] = 0
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			perCluster[labels[j]] += math.Sqrt(sqDist(rows[i], rows[j]))
		}

		own := labels[i]
		if counts[own] <= 1 {
			continue
		}
		a := perCluster[own] / float64(counts[own]-1)

		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if mean := perCluster[c] / float64(counts[c]); mean < b {
				b = mean
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		if max := math.Max(a, b); max > 0 {
			total += (b - a) / max
		}
	}
	return total / float64(n)
}
