package cluster

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRefinedCases(t *testing.T, cases []RefinedCase) string {
	t.Helper()
	data, err := json.Marshal(cases)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "refined_cases.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun(t *testing.T) {
	cases := []RefinedCase{
		{URL: "u0", CaseFolder: "f0", CaseTitle: "t0", ComplexityScore: 1.0, BodySystem: "neuro", HasMultipleImages: false},
		{URL: "u1", CaseFolder: "f1", CaseTitle: "t1", ComplexityScore: 1.2, BodySystem: "neuro", HasMultipleImages: false},
		{URL: "u2", CaseFolder: "f2", CaseTitle: "t2", ComplexityScore: 0.8, BodySystem: "neuro", HasMultipleImages: false},
		{URL: "u3", CaseFolder: "f3", CaseTitle: "t3", ComplexityScore: 9.0, BodySystem: "cardiac", HasMultipleImages: true},
		{URL: "u4", CaseFolder: "f4", CaseTitle: "t4", ComplexityScore: 9.3, BodySystem: "cardiac", HasMultipleImages: true},
		{URL: "u5", CaseFolder: "f5", CaseTitle: "t5", ComplexityScore: 8.7, BodySystem: "cardiac", HasMultipleImages: true},
	}

	t.Run("full report", func(t *testing.T) {
		path := writeRefinedCases(t, cases)

		report, err := Run(Params{DataPath: path, NumClusters: 2, Seed: 42})
		require.NoError(t, err)

		assert.True(t, report.Success)
		assert.Equal(t, 2, report.Parameters.NumClusters)
		assert.Equal(t, DefaultFeatures, report.Parameters.FeaturesUsed)
		assert.Equal(t, int64(42), report.Parameters.RandomState)
		assert.Equal(t, 6, report.Parameters.TotalSamples)

		require.NotNil(t, report.ClusteringResults)
		assert.Len(t, report.ClusteringResults.Labels, 6)
		require.NotNil(t, report.ClusteringResults.Silhouette)

		require.Len(t, report.ClusterStatistics, 2)
		sizeSum := 0
		for _, s := range report.ClusterStatistics {
			sizeSum += s["size"].(int)
		}
		assert.Equal(t, 6, sizeSum)

		require.Len(t, report.CasesWithClusters, 6)
		assert.Equal(t, "u0", report.CasesWithClusters[0].URL)
		assert.Contains(t, report.CasesWithClusters[0].Features, FeatureComplexityScore)
	})

	t.Run("custom feature selection", func(t *testing.T) {
		path := writeRefinedCases(t, cases)

		report, err := Run(Params{
			DataPath:    path,
			NumClusters: 2,
			Features:    []string{FeatureComplexityScore},
			Seed:        42,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{FeatureComplexityScore}, report.Parameters.FeaturesUsed)
	})

	t.Run("missing data file", func(t *testing.T) {
		_, err := Run(Params{DataPath: filepath.Join(t.TempDir(), "absent.json"), NumClusters: 2})
		assert.Error(t, err)
	})

	t.Run("malformed data file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Run(Params{DataPath: path, NumClusters: 2})
		assert.Error(t, err)
	})
}

func TestClusterStats(t *testing.T) {
	cases := []RefinedCase{
		{ComplexityScore: 1, BodySystem: "neuro", HasMultipleImages: true},
		{ComplexityScore: 3, BodySystem: "neuro", HasMultipleImages: false},
		{ComplexityScore: 8, BodySystem: "cardiac", HasMultipleImages: true},
	}
	labels := []int{0, 0, 1}

	stats := ClusterStats(cases, labels, DefaultFeatures, 2)
	require.Len(t, stats, 2)

	first := stats["cluster_0"]
	assert.Equal(t, 2, first["size"])
	assert.Equal(t, 66.67, first["percentage"])
	assert.Equal(t, 2.0, first[FeatureComplexityScore+"_mean"])
	assert.Equal(t, "neuro", first[FeatureBodySystem+"_mode"])
	assert.Equal(t, 50.0, first[FeatureHasMultipleImages+"_percentage"])

	second := stats["cluster_1"]
	assert.Equal(t, 1, second["size"])
	assert.Equal(t, 0.0, second[FeatureComplexityScore+"_std"])
	assert.Equal(t, map[string]int{"cardiac": 1}, second[FeatureBodySystem+"_distribution"])
}
