package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Key is the internal storage identifier for domain entities.
// It is derived from public case identifiers via content-based hashing,
// so the same case id always maps to the same key.
type Key uint64

// KeyFromCaseID derives a deterministic storage key from a public case id
// (for example "case_42") using BLAKE2b hashing.
func KeyFromCaseID(caseID string) Key {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(caseID))
	sum := h.Sum(nil)
	return Key(binary.LittleEndian.Uint64(sum))
}

// Method identifies an embedding space used for similarity ranking.
type Method string

const (
	// MethodTFIDF ranks in the sparse TF-IDF space.
	MethodTFIDF Method = "tfidf"
	// MethodBERT ranks in the dense sentence-embedding space.
	MethodBERT Method = "bert"
	// MethodImage ranks in the dense image-embedding space.
	MethodImage Method = "image"
	// MethodHybrid fuses text and image scores with a linear weight.
	MethodHybrid Method = "hybrid"
)

// Case is a single medical teaching case. Cases are loaded once at startup
// and treated as immutable; the position of a case in the loaded case array
// is the join key into every embedding matrix.
type Case struct {
	ID                    string
	URL                   string
	Title                 string
	Diagnosis             string
	History               string
	Exam                  string
	Findings              string
	Treatment             string
	Discussion            string
	DifferentialDiagnosis string
	PatientAge            int // -1 when unknown
	Gender                string
	Modalities            []string
	Regions               []string
	WordCount             int
	ImageCount            int
	ImagePaths            []string
	CaseFolder            string
	Thumbnail             string
}

// Hit is a single-space ranking result: the row index of the matched case
// and its cosine similarity to the query.
type Hit struct {
	Index int
	Score float32
}

// HybridHit is a fusion ranking result. Combined is the weighted linear
// combination of the text and image scores; the component scores are kept
// so callers can explain the fusion.
type HybridHit struct {
	Index    int
	Combined float32
	Text     float32
	Image    float32
}

// SimilarCase is a formatted, case-shaped search result.
// Rank is 1-based and contiguous, matching result order.
type SimilarCase struct {
	ID         string   `json:"id"`
	Diagnosis  string   `json:"diagnosis"`
	History    string   `json:"history,omitempty"`
	Findings   string   `json:"findings,omitempty"`
	ImageCount int      `json:"imageCount"`
	ImagePaths []string `json:"imagePaths"`
	Similarity float32  `json:"similarity"`
	Rank       int      `json:"rank"`
}

// HybridSimilarCase is the formatted result for hybrid fusion queries.
// It carries the component scores alongside the combined similarity.
type HybridSimilarCase struct {
	SimilarCase
	TextSimilarity  float32 `json:"textSimilarity"`
	ImageSimilarity float32 `json:"imageSimilarity"`
}

// SpaceMetadata describes one embedding space as reported by the stats
// endpoint. It is computed by the offline feature pipeline and stored next
// to the matrices it describes.
type SpaceMetadata struct {
	ModelName        string
	NumFeatures      int
	Sparsity         float32 // fraction of zero entries, sparse spaces only
	MeanSimilarity   float32
	MedianSimilarity float32
}
