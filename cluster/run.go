package cluster

import (
	"encoding/json"
	"fmt"
	"os"
)

// reportSampleSize caps the number of per-case assignments echoed in the
// report.
const reportSampleSize = 100

// Params are the user-facing clustering parameters.
type Params struct {
	DataPath    string
	NumClusters int
	Features    []string
	Seed        int64
}

// Parameters echoes the effective parameters in the report.
type Parameters struct {
	NumClusters  int      `json:"n_clusters"`
	FeaturesUsed []string `json:"features_used"`
	RandomState  int64    `json:"random_state"`
	TotalSamples int      `json:"total_samples"`
}

// CaseAssignment is one sampled case with its cluster and feature values.
type CaseAssignment struct {
	URL      string         `json:"url"`
	Folder   string         `json:"case_folder"`
	Title    string         `json:"case_title"`
	Cluster  int            `json:"cluster"`
	Features map[string]any `json:"features"`
}

// Report is the full clustering output.
type Report struct {
	Success           bool                      `json:"success"`
	Parameters        Parameters                `json:"parameters"`
	ClusteringResults *KMeansResult             `json:"clustering_results"`
	ClusterStatistics map[string]map[string]any `json:"cluster_statistics"`
	CasesWithClusters []CaseAssignment          `json:"cases_with_clusters"`
}

// Run loads the refined-cases artifact, clusters it, and assembles the
// report.
func Run(params Params) (*Report, error) {
	data, err := os.ReadFile(params.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	var cases []RefinedCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse data: %w", err)
	}

	features := params.Features
	if len(features) == 0 {
		features = DefaultFeatures
	}
	matrix, err := PrepareFeatures(cases, features)
	if err != nil {
		return nil, err
	}

	result, err := KMeans(matrix, KMeansConfig{
		NumClusters: params.NumClusters,
		Seed:        params.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}

	report := &Report{
		Success: true,
		Parameters: Parameters{
			NumClusters:  params.NumClusters,
			FeaturesUsed: matrix.Names,
			RandomState:  params.Seed,
			TotalSamples: len(cases),
		},
		ClusteringResults: result,
		ClusterStatistics: ClusterStats(cases, result.Labels, matrix.Names, params.NumClusters),
		CasesWithClusters: sampleAssignments(cases, result.Labels, matrix.Names),
	}
	return report, nil
}

func sampleAssignments(cases []RefinedCase, labels []int, featureNames []string) []CaseAssignment {
	n := len(cases)
	if n > reportSampleSize {
		n = reportSampleSize
	}

	sample := make([]CaseAssignment, n)
	for i := 0; i < n; i++ {
		c := cases[i]
		features := make(map[string]any, len(featureNames))
		for _, name := range featureNames {
			switch featureKinds[name] {
			case kindNumeric:
				features[name] = numericValue(c, name)
			case kindCategorical:
				features[name] = categoricalColumn([]RefinedCase{c}, name)[0]
			case kindBoolean:
				features[name] = c.HasMultipleImages
			}
		}
		sample[i] = CaseAssignment{
			URL:      c.URL,
			Folder:   c.CaseFolder,
			Title:    c.CaseTitle,
			Cluster:  labels[i],
			Features: features,
		}
	}
	return sample
}
