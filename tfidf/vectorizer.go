// Package tfidf implements the query-side half of the offline TF-IDF
// pipeline: a vectorizer whose vocabulary and IDF weights were fitted when
// the stored matrix was built, applied to free text at request time.
package tfidf

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/caselens/caselens/vector"
)

var (
	// ErrVocabularyEmpty indicates a vectorizer artifact with no terms.
	ErrVocabularyEmpty = errors.New("vectorizer vocabulary is empty")

	// ErrWeightCountMismatch indicates that the IDF weight array does not
	// line up with the vocabulary.
	ErrWeightCountMismatch = errors.New("idf weight count does not match vocabulary size")

	// ErrIndexOutOfRange indicates a vocabulary entry pointing outside the
	// IDF weight array.
	ErrIndexOutOfRange = errors.New("vocabulary index out of range")
)

// Tokens of two or more word characters, matching the fitted pipeline's
// token pattern.
var tokenPattern = regexp.MustCompile(`[\pL\pN_][\pL\pN_]+`)

// Vectorizer maps free text into the sparse TF-IDF space. Vocabulary and IDF
// weights are fitted offline and always loaded as one artifact, so a
// mismatched pair is unrepresentable; NewVectorizer still validates shape to
// catch corrupt artifacts early.
//
// A Vectorizer is immutable after construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]int32
	idf        []float32
}

// NewVectorizer builds a Vectorizer from a fitted vocabulary (term to column
// index) and per-column IDF weights.
func NewVectorizer(vocabulary map[string]int32, idf []float32) (*Vectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, ErrVocabularyEmpty
	}
	if len(vocabulary) != len(idf) {
		return nil, fmt.Errorf("%w: %d terms, %d weights",
			ErrWeightCountMismatch, len(vocabulary), len(idf))
	}
	for term, idx := range vocabulary {
		if idx < 0 || int(idx) >= len(idf) {
			return nil, fmt.Errorf("%w: term %q -> %d", ErrIndexOutOfRange, term, idx)
		}
	}
	return &Vectorizer{vocabulary: vocabulary, idf: idf}, nil
}

// NumFeatures returns the dimensionality of the TF-IDF space.
func (v *Vectorizer) NumFeatures() int {
	return len(v.idf)
}

// Transform encodes free text as an L2-normalized sparse TF-IDF vector.
// Terms outside the fitted vocabulary are ignored; text with no known terms
// yields an empty vector.
func (v *Vectorizer) Transform(text string) vector.Sparse {
	counts := make(map[int32]float32)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return vector.Sparse{}
	}

	indices := make([]int32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx] * v.idf[idx]
	}

	sparse := vector.Sparse{Indices: indices, Values: values}
	norm := sparse.Norm()
	if norm > 0 {
		for i := range sparse.Values {
			sparse.Values[i] /= norm
		}
	}
	return sparse
}
