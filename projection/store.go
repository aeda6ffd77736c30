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

package projection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/caselens/caselens/core"
)

const (
	coordinateFilePattern = "umap_coordinates_%s.json"
	clinicalFile          = "umap_clinical_enhanced.json"
	similarityLookupFile  = "case_similarity_lookup.json"
)

// Projection method names. These are view methods, distinct from the
// ranking methods: "text" here is the sentence-embedding projection.
const (
	MethodText   = "text"
	MethodImage  = "image"
	MethodHybrid = "hybrid"
)

// Store serves projection artifacts from a directory, loading each file
// lazily on first request and caching it for the life of the process.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	coords   map[string]*CoordinateSet
	clinical *ClinicalSet
	lookup   map[string][]SimilarEntry
}

// NewStore creates a projection store over the given artifact directory.
// The directory may be missing or empty; every lookup then reports
// unavailable.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger.With("component", "projection_store"),
		coords: make(map[string]*CoordinateSet),
	}
}

// Coordinates returns the 2D projection for a method. Method must be one
// of text, image or hybrid.
func (s *Store) Coordinates(method string) (*CoordinateSet, error) {
	switch method {
	case MethodText, MethodImage, MethodHybrid:
	default:
		return nil, fmt.Errorf("%w: unknown projection method %q", core.ErrInvalidInput, method)
	}

	s.mu.RLock()
	cached := s.coords[method]
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	var set CoordinateSet
	path := filepath.Join(s.dir, fmt.Sprintf(coordinateFilePattern, method))
	if err := s.loadJSON(path, &set); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.coords[method] = &set
	s.mu.Unlock()
	return &set, nil
}

// Methods lists the projection methods with their artifact availability.
func (s *Store) Methods() []MethodInfo {
	return []MethodInfo{
		{
			Value:       MethodText,
			Label:       "Text-based (BERT)",
			Description: "Semantic similarity from clinical text",
			Available:   s.artifactExists(fmt.Sprintf(coordinateFilePattern, MethodText)),
		},
		{
			Value:       MethodImage,
			Label:       "Image-based (ResNet)",
			Description: "Visual similarity from medical images",
			Available:   s.artifactExists(fmt.Sprintf(coordinateFilePattern, MethodImage)),
		},
		{
			Value:       MethodHybrid,
			Label:       "Hybrid (Text + Image)",
			Description: "Combined text and visual features",
			Available:   s.artifactExists(fmt.Sprintf(coordinateFilePattern, MethodHybrid)),
		},
	}
}

// ClinicalCoordinates returns the clinically enhanced projection.
func (s *Store) ClinicalCoordinates() (*ClinicalSet, error) {
	s.mu.RLock()
	cached := s.clinical
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	var set ClinicalSet
	if err := s.loadJSON(filepath.Join(s.dir, clinicalFile), &set); err != nil {
		return nil, err
	}
	if set.Method == "" {
		set.Method = "clinical"
	}

	s.mu.Lock()
	s.clinical = &set
	s.mu.Unlock()
	return &set, nil
}

// SimilarCases returns up to topK precomputed similar cases for a case id.
// An id absent from a loaded lookup is a not-found condition; an absent
// lookup file is unavailable.
func (s *Store) SimilarCases(caseID string, topK int) (*SimilarResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", core.ErrInvalidInput, topK)
	}

	lookup, err := s.similarityLookup()
	if err != nil {
		return nil, err
	}

	entries, ok := lookup[caseID]
	if !ok {
		return nil, fmt.Errorf("similar cases not precomputed for case %q: %w", caseID, core.ErrNotFound)
	}
	if len(entries) > topK {
		entries = entries[:topK]
	}

	return &SimilarResult{QueryCaseID: caseID, SimilarCases: entries}, nil
}

// Statistics computes category, treatment, symptom and cluster counts over
// the clinical projection.
func (s *Store) Statistics() (*Statistics, error) {
	set, err := s.ClinicalCoordinates()
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalCases:          len(set.Coordinates),
		DiagnosisCategories: make(map[string]int),
		TreatmentTypes:      make(map[string]int),
	}

	symptomCounts := make(map[string]int)
	clusters := make(map[int]bool)
	for _, p := range set.Coordinates {
		stats.DiagnosisCategories[p.DiagnosisCategory]++
		stats.TreatmentTypes[p.TreatmentCategory]++
		for _, symptom := range p.Symptoms {
			symptomCounts[symptom]++
		}
		if p.Cluster >= 0 {
			clusters[p.Cluster] = true
		} else {
			stats.OutlierCases++
		}
	}
	stats.TotalClusters = len(clusters)
	stats.TopSymptoms = topCounts(symptomCounts, 10)

	return stats, nil
}

func (s *Store) similarityLookup() (map[string][]SimilarEntry, error) {
	s.mu.RLock()
	cached := s.lookup
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	lookup := make(map[string][]SimilarEntry)
	if err := s.loadJSON(filepath.Join(s.dir, similarityLookupFile), &lookup); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lookup = lookup
	s.mu.Unlock()
	return lookup, nil
}

func (s *Store) loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("projection artifact %s not found: %w", filepath.Base(path), core.ErrUnavailable)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w: %w", filepath.Base(path), core.ErrCorruptArtifact, err)
	}
	s.logger.Debug("Projection artifact loaded", "file", filepath.Base(path), "bytes", len(data))
	return nil
}

func (s *Store) artifactExists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// topCounts returns the n highest counts, ties broken alphabetically so
// the result is deterministic.
func topCounts(counts map[string]int, n int) map[string]int {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.name] = e.count
	}
	return top
}
