// Copyright 2025 The caselens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package caselens

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/ai/mock"
	"github.com/caselens/caselens/core"
)

// writeSeedArtifacts lays out a two-case artifact directory for end-to-end
// seeding.
func writeSeedArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	write("cases_cleaned.json", []map[string]any{
		{"id": "case_a", "title": "Femoral fracture", "diagnosis": "fracture"},
		{"id": "case_b", "title": "Glioma", "diagnosis": "glioma"},
	})
	write("case_ids.json", []string{"case_a", "case_b"})
	write("tfidf_features.json", map[string]any{
		"indptr":  []int{0, 1, 2},
		"indices": []int32{0, 1},
		"data":    []float32{1, 1},
		"shape":   []int{2, 2},
	})
	write("tfidf_vectorizer.json", map[string]any{
		"vocabulary": map[string]int32{"fracture": 0, "glioma": 1},
		"idf":        []float32{1, 1},
	})
	write("bert_embeddings.json", [][]float32{{1, 0, 0}, {0, 1, 0}})
	return dir
}

func newTestExplorer(t *testing.T) *Explorer {
	t.Helper()
	explorer, err := NewExplorer("",
		WithInMemoryStorage(),
		WithProvider(mock.NewMockProviderWithEmbedder(&mock.MockEmbedder{Dim: 3})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { explorer.Close() })
	return explorer
}

func TestExplorerSeedAndSearch(t *testing.T) {
	ctx := context.Background()
	explorer := newTestExplorer(t)

	pipeline, err := explorer.NewIngestPipeline()
	require.NoError(t, err)
	defer pipeline.Release()
	require.NoError(t, pipeline.Seed(ctx, writeSeedArtifacts(t)))

	searcher, err := explorer.NewSearcher(ctx)
	require.NoError(t, err)

	t.Run("ranks a seeded case", func(t *testing.T) {
		results, err := searcher.SimilarToCase(ctx, "case_a", core.MethodTFIDF, 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "case_b", results[0].ID)
	})

	t.Run("free text search over the seeded vectorizer", func(t *testing.T) {
		results, err := searcher.SearchText(ctx, "glioma", core.MethodTFIDF, 2)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "case_b", results[0].ID)
	})

	t.Run("stats reflect the corpus", func(t *testing.T) {
		stats := searcher.Stats()
		assert.Equal(t, 2, stats.TotalCases)
		assert.False(t, stats.HasImages)
	})
}

func TestExplorerLoadUnseeded(t *testing.T) {
	ctx := context.Background()
	explorer := newTestExplorer(t)

	_, err := explorer.LoadStore(ctx)
	assert.Error(t, err)
}
