package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

// Artifact file names as written by the offline feature pipeline.
const (
	casesFile           = "cases_cleaned.json"
	caseOrderFile       = "case_ids.json"
	tfidfMatrixFile     = "tfidf_features.json"
	tfidfVectorizerFile = "tfidf_vectorizer.json"
	textMatrixFile      = "bert_embeddings.json"
	imageMatrixFile     = "image_embeddings.json"
	tfidfMetadataFile   = "tfidf_metadata.json"
	textMetadataFile    = "bert_metadata.json"
	imageMetadataFile   = "image_metadata.json"
)

// caseRecord mirrors the exported case JSON shape.
type caseRecord struct {
	ID                    string   `json:"id"`
	URL                   string   `json:"url"`
	Title                 string   `json:"title"`
	Diagnosis             string   `json:"diagnosis"`
	History               string   `json:"history"`
	Exam                  string   `json:"exam"`
	Findings              string   `json:"findings"`
	Treatment             string   `json:"treatment"`
	Discussion            string   `json:"discussion"`
	DifferentialDiagnosis string   `json:"differentialDiagnosis"`
	PatientAge            *int     `json:"patient_age"`
	Gender                string   `json:"gender"`
	Modalities            []string `json:"modalities"`
	Regions               []string `json:"regions"`
	WordCount             int      `json:"word_count"`
	ImageCount            int      `json:"imageCount"`
	ImagePaths            []string `json:"imagePaths"`
	CaseFolder            string   `json:"caseFolder"`
	Thumbnail             string   `json:"thumbnail"`
}

func (r *caseRecord) toCase() *core.Case {
	age := -1
	if r.PatientAge != nil {
		age = *r.PatientAge
	}
	return &core.Case{
		ID:                    r.ID,
		URL:                   r.URL,
		Title:                 r.Title,
		Diagnosis:             r.Diagnosis,
		History:               r.History,
		Exam:                  r.Exam,
		Findings:              r.Findings,
		Treatment:             r.Treatment,
		Discussion:            r.Discussion,
		DifferentialDiagnosis: r.DifferentialDiagnosis,
		PatientAge:            age,
		Gender:                r.Gender,
		Modalities:            r.Modalities,
		Regions:               r.Regions,
		WordCount:             r.WordCount,
		ImageCount:            r.ImageCount,
		ImagePaths:            r.ImagePaths,
		CaseFolder:            r.CaseFolder,
		Thumbnail:             r.Thumbnail,
	}
}

// csrMatrix mirrors the exported compressed sparse row matrix.
type csrMatrix struct {
	Indptr  []int     `json:"indptr"`
	Indices []int32   `json:"indices"`
	Data    []float32 `json:"data"`
	Shape   []int     `json:"shape"`
}

// rows expands the CSR form into per-row sparse vectors.
func (m *csrMatrix) rows() ([]vector.Sparse, error) {
	if len(m.Shape) != 2 {
		return nil, fmt.Errorf("%w: csr shape must have 2 entries, got %d", core.ErrCorruptArtifact, len(m.Shape))
	}
	numRows := m.Shape[0]
	if len(m.Indptr) != numRows+1 {
		return nil, fmt.Errorf("%w: csr indptr has %d entries for %d rows", core.ErrCorruptArtifact, len(m.Indptr), numRows)
	}
	if len(m.Indices) != len(m.Data) {
		return nil, fmt.Errorf("%w: csr indices/data length mismatch (%d vs %d)", core.ErrCorruptArtifact, len(m.Indices), len(m.Data))
	}

	rows := make([]vector.Sparse, numRows)
	for i := 0; i < numRows; i++ {
		start, end := m.Indptr[i], m.Indptr[i+1]
		if start > end || end > len(m.Data) {
			return nil, fmt.Errorf("%w: csr row %d has invalid extent [%d,%d)", core.ErrCorruptArtifact, i, start, end)
		}
		rows[i] = vector.Sparse{
			Indices: m.Indices[start:end],
			Values:  m.Data[start:end],
		}
	}
	return rows, nil
}

// vectorizerArtifact mirrors the exported vectorizer JSON.
type vectorizerArtifact struct {
	Vocabulary map[string]int32 `json:"vocabulary"`
	IDF        []float32        `json:"idf"`
}

// metadataArtifact mirrors the exported per-space metadata JSON.
type metadataArtifact struct {
	ModelName        string  `json:"model_name"`
	NumFeatures      int     `json:"num_features"`
	EmbeddingDim     int     `json:"embedding_dimension"`
	Sparsity         float32 `json:"sparsity"`
	MeanSimilarity   float32 `json:"mean_similarity"`
	MedianSimilarity float32 `json:"median_similarity"`
}

func (m *metadataArtifact) toMetadata() *core.SpaceMetadata {
	features := m.NumFeatures
	if features == 0 {
		features = m.EmbeddingDim
	}
	return &core.SpaceMetadata{
		ModelName:        m.ModelName,
		NumFeatures:      features,
		Sparsity:         m.Sparsity,
		MeanSimilarity:   m.MeanSimilarity,
		MedianSimilarity: m.MedianSimilarity,
	}
}

func readCases(dir string) ([]*core.Case, error) {
	var records []caseRecord
	if err := readJSON(filepath.Join(dir, casesFile), &records); err != nil {
		return nil, err
	}
	cases := make([]*core.Case, len(records))
	for i := range records {
		cases[i] = records[i].toCase()
	}
	return cases, nil
}

func readCaseOrder(dir string) ([]string, error) {
	var ids []string
	if err := readJSON(filepath.Join(dir, caseOrderFile), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func readSparseMatrix(dir string) ([]vector.Sparse, int, error) {
	var m csrMatrix
	if err := readJSON(filepath.Join(dir, tfidfMatrixFile), &m); err != nil {
		return nil, 0, err
	}
	rows, err := m.rows()
	if err != nil {
		return nil, 0, err
	}
	return rows, m.Shape[1], nil
}

func readVectorizer(dir string) (*tfidf.Vectorizer, error) {
	var artifact vectorizerArtifact
	if err := readJSON(filepath.Join(dir, tfidfVectorizerFile), &artifact); err != nil {
		return nil, err
	}
	v, err := tfidf.NewVectorizer(artifact.Vocabulary, artifact.IDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptArtifact, err)
	}
	return v, nil
}

func readDenseMatrix(dir, name string) ([][]float32, error) {
	var rows [][]float32
	if err := readJSON(filepath.Join(dir, name), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// readMetadata returns nil without error when the file is absent.
// Metadata is advisory.
func readMetadata(dir, name string) (*core.SpaceMetadata, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var artifact metadataArtifact
	if err := readJSON(path, &artifact); err != nil {
		return nil, err
	}
	return artifact.toMetadata(), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w: %w", filepath.Base(path), core.ErrCorruptArtifact, err)
	}
	return nil
}
