package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

var (
	// ErrBadClusterCount is returned when the requested cluster count is
	// out of range for the data.
	ErrBadClusterCount = errors.New("cluster count out of range")
)

const (
	defaultNumInit = 10
	defaultMaxIter = 300
	assignChunk    = 256
)

// KMeansConfig holds the clustering parameters.
type KMeansConfig struct {
	NumClusters int
	NumInit     int   // restarts, best run by inertia; default 10
	MaxIter     int   // per-run iteration cap; default 300
	Seed        int64 // fixed seed makes runs reproducible
	PoolSize    int   // worker pool size for row assignment
}

// KMeansResult is the outcome of the best run.
type KMeansResult struct {
	Labels     []int       `json:"cluster_labels"`
	Centers    [][]float64 `json:"cluster_centers"` // in original feature scale
	Silhouette *float64    `json:"silhouette_score"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"n_iterations"`
}

// KMeans standardizes the feature matrix and clusters it with restarted
// Lloyd's iterations. Centers are reported back in the original feature
// scale.
func KMeans(m *Matrix, cfg KMeansConfig) (*KMeansResult, error) {
	n := len(m.Rows)
	if cfg.NumClusters < 1 || cfg.NumClusters > n {
		return nil, fmt.Errorf("%w: %d clusters for %d samples", ErrBadClusterCount, cfg.NumClusters, n)
	}
	if cfg.NumInit < 1 {
		cfg.NumInit = defaultNumInit
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = defaultMaxIter
	}

	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = runtime.NumCPU()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	scaled, means, stds := standardize(m.Rows)
	rng := rand.New(rand.NewSource(cfg.Seed))

	var best *runOutcome
	for run := 0; run < cfg.NumInit; run++ {
		outcome := lloyd(scaled, cfg.NumClusters, cfg.MaxIter, rng, pool)
		if best == nil || outcome.inertia < best.inertia {
			best = outcome
		}
	}

	result := &KMeansResult{
		Labels:     best.labels,
		Centers:    unscale(best.centers, means, stds),
		Inertia:    best.inertia,
		Iterations: best.iterations,
	}
	if cfg.NumClusters > 1 && distinctLabels(best.labels) > 1 {
		s := silhouette(scaled, best.labels, cfg.NumClusters)
		result.Silhouette = &s
	}
	return result, nil
}

type runOutcome struct {
	labels     []int
	centers    [][]float64
	inertia    float64
	iterations int
}

// lloyd runs one k-means iteration sequence from a k-means++ seeding.
func lloyd(rows [][]float64, k, maxIter int, rng *rand.Rand, pool *ants.Pool) *runOutcome {
	centers := seedPlusPlus(rows, k, rng)
	labels := make([]int, len(rows))
	dists := make([]float64, len(rows))

	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1
		changed := assign(rows, centers, labels, dists, pool)

		// Recompute centers. Empty clusters keep their previous center.
		dim := len(centers[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range rows {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		if !changed {
			break
		}
	}

	inertia := 0.0
	for _, d := range dists {
		inertia += d
	}
	return &runOutcome{
		labels:     append([]int(nil), labels...),
		centers:    centers,
		inertia:    inertia,
		iterations: iterations,
	}
}

// assign writes each row's nearest center into labels and its squared
// distance into dists, chunked across the pool. Returns whether any label
// changed.
func assign(rows [][]float64, centers [][]float64, labels []int, dists []float64, pool *ants.Pool) bool {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed bool
	)

	for start := 0; start < len(rows); start += assignChunk {
		end := start + assignChunk
		if end > len(rows) {
			end = len(rows)
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			chunkChanged := false
			for i := start; i < end; i++ {
				best, bestDist := 0, math.Inf(1)
				for c, center := range centers {
					d := sqDist(rows[i], center)
					if d < bestDist {
						best, bestDist = c, d
					}
				}
				if labels[i] != best {
					labels[i] = best
					chunkChanged = true
				}
				dists[i] = bestDist
			}
			if chunkChanged {
				mu.Lock()
				changed = true
				mu.Unlock()
			}
		})
		if err != nil {
			// Pool rejected the task, run the chunk inline.
			wg.Done()
			for i := start; i < end; i++ {
				best, bestDist := 0, math.Inf(1)
				for c, center := range centers {
					d := sqDist(rows[i], center)
					if d < bestDist {
						best, bestDist = c, d
					}
				}
				if labels[i] != best {
					labels[i] = best
					changed = true
				}
				dists[i] = bestDist
			}
		}
	}
	wg.Wait()

	return changed
}

// seedPlusPlus picks initial centers with k-means++ weighting.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := rows[rng.Intn(len(rows))]
	centers = append(centers, append([]float64(nil), first...))

	dists := make([]float64, len(rows))
	for len(centers) < k {
		total := 0.0
		for i, row := range rows {
			d := math.Inf(1)
			for _, center := range centers {
				if sd := sqDist(row, center); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}

		var next []float64
		if total == 0 {
			next = rows[rng.Intn(len(rows))]
		} else {
			target := rng.Float64() * total
			acc := 0.0
			next = rows[len(rows)-1]
			for i, d := range dists {
				acc += d
				if acc >= target {
					next = rows[i]
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), next...))
	}
	return centers
}

// standardize scales columns to zero mean and unit variance. Constant
// columns are left centered only.
func standardize(rows [][]float64) (scaled [][]float64, means, stds []float64) {
	n := len(rows)
	dim := len(rows[0])
	means = make([]float64, dim)
	stds = make([]float64, dim)

	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(n))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	scaled = make([][]float64, n)
	for i, row := range rows {
		s := make([]float64, dim)
		for j, v := range row {
			s[j] = (v - means[j]) / stds[j]
		}
		scaled[i] = s
	}
	return scaled, means, stds
}

func unscale(centers [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(centers))
	for c, center := range centers {
		row := make([]float64, len(center))
		for j, v := range center {
			row[j] = v*stds[j] + means[j]
		}
		out[c] = row
	}
	return out
}

func sqDist(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func distinctLabels(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}
