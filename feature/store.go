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

package feature

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

// Store holds the loaded embedding spaces and case records.
// It is immutable after Load returns and safe for concurrent readers.
type Store struct {
	cases      []*core.Case
	index      map[string]int
	tfidfRows  []vector.Sparse
	textRows   [][]float32
	imageRows  [][]float32
	vectorizer *tfidf.Vectorizer
	meta       map[string]*core.SpaceMetadata
}

// Load builds a Store from the repositories. The case order defines row
// identity; cases, matrices and the vectorizer are fetched concurrently.
//
// The TF-IDF and sentence-embedding spaces are required and any failure
// loading them is fatal. The image space is optional: when absent the Store
// reports HasImageEmbeddings() == false and image-dependent operations
// degrade at request time.
func Load(ctx context.Context, caseRepo storage.CaseRepository, featRepo storage.FeatureRepository, logger *slog.Logger) (*Store, error) {
	log := logger.With("component", "feature_store")

	order, err := featRepo.GetCaseOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load case order: %w", err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("case order is empty: %w", core.ErrCorruptArtifact)
	}

	index := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate case id %q in case order: %w", id, core.ErrCorruptArtifact)
		}
		index[id] = i
	}

	s := &Store{
		index: index,
		meta:  make(map[string]*core.SpaceMetadata),
	}
	var metaMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cases := make([]*core.Case, len(order))
		for i, id := range order {
			c, err := caseRepo.GetCase(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load case %q: %w", id, err)
			}
			cases[i] = c
		}
		s.cases = cases
		return nil
	})

	g.Go(func() error {
		rows, err := featRepo.GetSparseRows(gctx, storage.SpaceTFIDF)
		if err != nil {
			return fmt.Errorf("failed to load tfidf rows: %w", err)
		}
		s.tfidfRows = rows
		return nil
	})

	g.Go(func() error {
		rows, err := featRepo.GetDenseRows(gctx, storage.SpaceText)
		if err != nil {
			return fmt.Errorf("failed to load text rows: %w", err)
		}
		s.textRows = rows
		return nil
	})

	g.Go(func() error {
		ok, err := featRepo.HasSpace(gctx, storage.SpaceImage)
		if err != nil {
			return fmt.Errorf("failed to probe image space: %w", err)
		}
		if !ok {
			return nil
		}
		rows, err := featRepo.GetDenseRows(gctx, storage.SpaceImage)
		if err != nil {
			return fmt.Errorf("failed to load image rows: %w", err)
		}
		s.imageRows = rows
		return nil
	})

	g.Go(func() error {
		v, err := featRepo.GetVectorizer(gctx)
		if err != nil {
			return fmt.Errorf("failed to load vectorizer: %w", err)
		}
		s.vectorizer = v
		return nil
	})

	for _, space := range []string{storage.SpaceTFIDF, storage.SpaceText, storage.SpaceImage} {
		g.Go(func() error {
			m, err := featRepo.GetSpaceMetadata(gctx, space)
			if err != nil {
				// Metadata is advisory. Spaces work without it.
				return nil
			}
			metaMu.Lock()
			s.meta[space] = m
			metaMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.validate(len(order)); err != nil {
		return nil, err
	}

	log.Info("Embedding store loaded",
		"cases", len(s.cases),
		"tfidf_features", s.vectorizer.NumFeatures(),
		"text_dim", s.TextDim(),
		"has_image", s.HasImageEmbeddings())

	return s, nil
}

func (s *Store) validate(numRows int) error {
	if len(s.tfidfRows) != numRows {
		return fmt.Errorf("tfidf matrix has %d rows, case order has %d: %w",
			len(s.tfidfRows), numRows, storage.ErrRowCountMismatch)
	}
	if len(s.textRows) != numRows {
		return fmt.Errorf("text matrix has %d rows, case order has %d: %w",
			len(s.textRows), numRows, storage.ErrRowCountMismatch)
	}
	if s.imageRows != nil && len(s.imageRows) != numRows {
		return fmt.Errorf("image matrix has %d rows, case order has %d: %w",
			len(s.imageRows), numRows, storage.ErrRowCountMismatch)
	}

	if err := checkDenseDims(s.textRows, "text"); err != nil {
		return err
	}
	if err := checkDenseDims(s.imageRows, "image"); err != nil {
		return err
	}
	return nil
}

func checkDenseDims(rows [][]float32, space string) error {
	if len(rows) == 0 {
		return nil
	}
	dim := len(rows[0])
	if dim == 0 {
		return fmt.Errorf("%s matrix has zero-width rows: %w", space, core.ErrCorruptArtifact)
	}
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("%s matrix row %d has %d features, expected %d: %w",
				space, i, len(row), dim, core.ErrCorruptArtifact)
		}
	}
	return nil
}

// NumCases returns the number of cases in the store.
func (s *Store) NumCases() int {
	return len(s.cases)
}

// Cases returns all cases in row order. Callers must not mutate the slice.
func (s *Store) Cases() []*core.Case {
	return s.cases
}

// Case returns the case at row index i. Panics on out-of-range access,
// so callers resolve indices through CaseIndex or ranked hits.
func (s *Store) Case(i int) *core.Case {
	return s.cases[i]
}

// CaseIndex returns the row index of a case id and whether it exists.
func (s *Store) CaseIndex(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// TFIDFRows returns the sparse TF-IDF matrix in row order.
func (s *Store) TFIDFRows() []vector.Sparse {
	return s.tfidfRows
}

// TextRows returns the dense sentence-embedding matrix in row order.
func (s *Store) TextRows() [][]float32 {
	return s.textRows
}

// ImageRows returns the dense image-embedding matrix in row order,
// or nil when no image space was loaded.
func (s *Store) ImageRows() [][]float32 {
	return s.imageRows
}

// HasImageEmbeddings reports whether an image space was loaded.
func (s *Store) HasImageEmbeddings() bool {
	return s.imageRows != nil
}

// TextDim returns the dimensionality of the sentence-embedding space.
func (s *Store) TextDim() int {
	if len(s.textRows) == 0 {
		return 0
	}
	return len(s.textRows[0])
}

// ImageDim returns the dimensionality of the image space, or 0 when absent.
func (s *Store) ImageDim() int {
	if len(s.imageRows) == 0 {
		return 0
	}
	return len(s.imageRows[0])
}

// Vectorizer returns the TF-IDF vectorizer the stored matrix was built with.
func (s *Store) Vectorizer() *tfidf.Vectorizer {
	return s.vectorizer
}

// Metadata returns stored metadata for a space, or nil when none exists.
func (s *Store) Metadata(space string) *core.SpaceMetadata {
	return s.meta[space]
}
