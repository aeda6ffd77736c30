package cluster

import (
	"fmt"
	"math"
	"sort"
)

// ClusterStats computes per-cluster summaries for the selected features:
// sample counts, mean and sample deviation for numeric columns, mode and
// value distribution for categorical columns, and a fraction for boolean
// columns. Keys follow the "<feature>_mean" naming of the report format.
func ClusterStats(cases []RefinedCase, labels []int, featureNames []string, k int) map[string]map[string]any {
	stats := make(map[string]map[string]any, k)
	total := len(cases)

	for c := 0; c < k; c++ {
		var members []RefinedCase
		for i, l := range labels {
			if l == c {
				members = append(members, cases[i])
			}
		}

		s := map[string]any{
			"size":       len(members),
			"percentage": round2(100 * float64(len(members)) / float64(total)),
		}
		for _, name := range featureNames {
			switch featureKinds[name] {
			case kindNumeric:
				mean, std := meanStd(numericColumn(members, name))
				s[name+"_mean"] = round2(mean)
				s[name+"_std"] = round2(std)
			case kindCategorical:
				values := categoricalColumn(members, name)
				s[name+"_mode"] = mode(values)
				s[name+"_distribution"] = distribution(values)
			case kindBoolean:
				s[name+"_percentage"] = round2(100 * booleanFraction(members))
			}
		}
		stats[fmt.Sprintf("cluster_%d", c)] = s
	}
	return stats
}

func numericColumn(cases []RefinedCase, name string) []float64 {
	values := make([]float64, len(cases))
	for i, c := range cases {
		values[i] = numericValue(c, name)
	}
	return values
}

func booleanFraction(cases []RefinedCase) float64 {
	if len(cases) == 0 {
		return 0
	}
	count := 0
	for _, c := range cases {
		if c.HasMultipleImages {
			count++
		}
	}
	return float64(count) / float64(len(cases))
}

// meanStd returns the mean and sample standard deviation.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)-1))
}

// mode returns the most common value, ties broken alphabetically.
func mode(values []string) string {
	if len(values) == 0 {
		return "Unknown"
	}
	counts := distribution(values)
	best, bestCount := "", -1
	keys := make([]string, 0, len(counts))
	for v := range counts {
		keys = append(keys, v)
	}
	sort.Strings(keys)
	for _, v := range keys {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func distribution(values []string) map[string]int {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
