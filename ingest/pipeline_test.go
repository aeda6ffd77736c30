package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/ai/mock"
	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/feature"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/storage/badger"
	"github.com/caselens/caselens/vector"
)

type artifactConfig struct {
	withImage   bool
	emptyRow    int // index of a text row left empty, -1 for none
	rowMismatch bool
	dropCase    string // id removed from cases_cleaned.json
}

// writeArtifacts lays out a minimal artifact directory with two vocabulary
// terms and three cases.
func writeArtifacts(t *testing.T, cfg artifactConfig) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	age := 54
	records := []map[string]any{
		{"id": "case_a", "title": "Femoral fracture", "diagnosis": "fracture", "patient_age": age},
		{"id": "case_b", "title": "Glioma", "diagnosis": "glioma", "patient_age": nil},
		{"id": "case_c", "title": "Pneumonia", "diagnosis": "pneumonia", "patient_age": nil},
	}
	if cfg.dropCase != "" {
		kept := records[:0]
		for _, r := range records {
			if r["id"] != cfg.dropCase {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	write("cases_cleaned.json", records)
	write("case_ids.json", []string{"case_a", "case_b", "case_c"})

	write("tfidf_features.json", map[string]any{
		"indptr":  []int{0, 1, 2, 3},
		"indices": []int32{0, 1, 0},
		"data":    []float32{1, 1, 0.5},
		"shape":   []int{3, 2},
	})
	write("tfidf_vectorizer.json", map[string]any{
		"vocabulary": map[string]int32{"fracture": 0, "glioma": 1},
		"idf":        []float32{1.2, 1.5},
	})

	textRows := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if cfg.emptyRow >= 0 {
		textRows[cfg.emptyRow] = []float32{}
	}
	if cfg.rowMismatch {
		textRows = textRows[:2]
	}
	write("bert_embeddings.json", textRows)

	if cfg.withImage {
		write("image_embeddings.json", [][]float32{{1, 0}, {0, 1}, {1, 1}})
		write("image_metadata.json", map[string]any{"model_name": "resnet50", "embedding_dimension": 2})
	}
	write("tfidf_metadata.json", map[string]any{"model_name": "tfidf", "num_features": 2, "sparsity": 0.5})
	write("bert_metadata.json", map[string]any{"model_name": "all-MiniLM-L6-v2", "embedding_dimension": 3})

	return dir
}

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.CaseRepository, storage.FeatureRepository) {
	t.Helper()
	caseRepo, featRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(caseRepo, featRepo, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, caseRepo, featRepo
}

func TestNewPipeline(t *testing.T) {
	t.Run("nil case repository", func(t *testing.T) {
		_, err := NewPipeline(nil, nil)
		assert.Equal(t, ErrCaseRepositoryRequired, err)
	})

	t.Run("nil feature repository", func(t *testing.T) {
		caseRepo, _, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewPipeline(caseRepo, nil)
		assert.Equal(t, ErrFeatureRepositoryRequired, err)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		caseRepo, featRepo, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		_, err = NewPipeline(caseRepo, featRepo, WithBatchSize(0))
		assert.Error(t, err)
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds a loadable store", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: -1})
		pipeline, caseRepo, featRepo := newTestPipeline(t, WithBatchSize(2))

		require.NoError(t, pipeline.Seed(ctx, dir))

		store, err := feature.Load(ctx, caseRepo, featRepo, slog.Default())
		require.NoError(t, err)

		assert.Equal(t, 3, store.NumCases())
		assert.Equal(t, 3, store.TextDim())
		assert.False(t, store.HasImageEmbeddings())

		c, err := caseRepo.GetCase(ctx, "case_a")
		require.NoError(t, err)
		assert.Equal(t, "fracture", c.Diagnosis)
		assert.Equal(t, 54, c.PatientAge)

		// Absent age maps to the -1 sentinel.
		c, err = caseRepo.GetCase(ctx, "case_b")
		require.NoError(t, err)
		assert.Equal(t, -1, c.PatientAge)

		meta := store.Metadata(storage.SpaceText)
		require.NotNil(t, meta)
		assert.Equal(t, "all-MiniLM-L6-v2", meta.ModelName)
		assert.Equal(t, 3, meta.NumFeatures)
	})

	t.Run("seeds the optional image space", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{withImage: true, emptyRow: -1})
		pipeline, caseRepo, featRepo := newTestPipeline(t)

		require.NoError(t, pipeline.Seed(ctx, dir))

		store, err := feature.Load(ctx, caseRepo, featRepo, slog.Default())
		require.NoError(t, err)
		assert.True(t, store.HasImageEmbeddings())
		assert.Equal(t, 2, store.ImageDim())
	})

	t.Run("backfills empty text rows through the embedder", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: 1})
		embedder := &mock.MockEmbedder{Dim: 3}
		pipeline, _, featRepo := newTestPipeline(t, WithEmbedder(embedder))

		require.NoError(t, pipeline.Seed(ctx, dir))
		assert.Equal(t, 1, embedder.CallCount())

		rows, err := featRepo.GetDenseRows(ctx, storage.SpaceText)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Len(t, rows[1], 3)
		assert.NotEqual(t, []float32{0, 0, 0}, rows[1])
	})

	t.Run("backfill rejects a short batch response", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: 1})
		embedder := &mock.MockEmbedder{
			EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, nil
			},
		}
		pipeline, _, _ := newTestPipeline(t, WithEmbedder(embedder))

		err := pipeline.Seed(ctx, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 vectors for 1 texts")
	})

	t.Run("backfill rejects an empty vector", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: 1})
		embedder := &mock.MockEmbedder{
			EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{{}}, nil
			},
		}
		pipeline, _, _ := newTestPipeline(t, WithEmbedder(embedder))

		err := pipeline.Seed(ctx, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty vector for case case_b")
	})

	t.Run("empty text row without an embedder", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: 0})
		pipeline, _, _ := newTestPipeline(t)

		err := pipeline.Seed(ctx, dir)
		assert.ErrorIs(t, err, core.ErrCorruptArtifact)
	})

	t.Run("case order references a missing case", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: -1, dropCase: "case_b"})
		pipeline, _, _ := newTestPipeline(t)

		err := pipeline.Seed(ctx, dir)
		assert.ErrorIs(t, err, ErrMissingCase)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		dir := writeArtifacts(t, artifactConfig{emptyRow: -1, rowMismatch: true})
		pipeline, _, _ := newTestPipeline(t)

		err := pipeline.Seed(ctx, dir)
		assert.ErrorIs(t, err, storage.ErrRowCountMismatch)
	})

	t.Run("missing artifact directory", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)
		err := pipeline.Seed(ctx, filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})
}

func TestCSRExpansion(t *testing.T) {
	t.Run("valid matrix", func(t *testing.T) {
		m := &csrMatrix{
			Indptr:  []int{0, 2, 2, 3},
			Indices: []int32{0, 3, 1},
			Data:    []float32{0.5, 0.2, 0.9},
			Shape:   []int{3, 4},
		}
		rows, err := m.rows()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, vector.Sparse{Indices: []int32{0, 3}, Values: []float32{0.5, 0.2}}, rows[0])
		assert.Equal(t, 0, rows[1].NNZ())
	})

	t.Run("bad indptr", func(t *testing.T) {
		m := &csrMatrix{Indptr: []int{0, 1}, Shape: []int{3, 4}}
		_, err := m.rows()
		assert.ErrorIs(t, err, core.ErrCorruptArtifact)
	})

	t.Run("indices data mismatch", func(t *testing.T) {
		m := &csrMatrix{
			Indptr:  []int{0, 1, 1, 1},
			Indices: []int32{0, 1},
			Data:    []float32{0.5},
			Shape:   []int{3, 4},
		}
		_, err := m.rows()
		assert.ErrorIs(t, err, core.ErrCorruptArtifact)
	})
}

func TestClinicalText(t *testing.T) {
	c := &core.Case{Title: "Title", History: "History", Diagnosis: "Diagnosis"}
	assert.Equal(t, "Title History Diagnosis", clinicalText(c))
	assert.Equal(t, "", clinicalText(&core.Case{}))
}
