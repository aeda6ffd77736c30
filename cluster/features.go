package cluster

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoValidFeatures is returned when no selected feature names a known
	// column.
	ErrNoValidFeatures = errors.New("no valid features selected")

	// ErrNoData is returned when the record set is empty.
	ErrNoData = errors.New("no case records to cluster")
)

// RefinedCase is one row of the refined-cases artifact, carrying the
// tabular columns available for clustering.
type RefinedCase struct {
	URL                string  `json:"URL"`
	CaseFolder         string  `json:"Case Folder"`
	CaseTitle          string  `json:"Case Title"`
	ComplexityScore    float64 `json:"complexity_score"`
	TitleLength        float64 `json:"title_length"`
	BodySystem         string  `json:"body_system"`
	ImagingModality    string  `json:"imaging_modality"`
	ComplexityCategory string  `json:"complexity_category"`
	HasMultipleImages  bool    `json:"has_multiple_images"`
}

// Feature column names accepted by PrepareFeatures.
const (
	FeatureComplexityScore    = "complexity_score"
	FeatureTitleLength        = "title_length"
	FeatureBodySystem         = "body_system"
	FeatureImagingModality    = "imaging_modality"
	FeatureComplexityCategory = "complexity_category"
	FeatureHasMultipleImages  = "has_multiple_images"
)

// DefaultFeatures is the feature selection used when none is given.
var DefaultFeatures = []string{FeatureComplexityScore, FeatureBodySystem, FeatureHasMultipleImages}

type featureKind int

const (
	kindNumeric featureKind = iota
	kindCategorical
	kindBoolean
)

var featureKinds = map[string]featureKind{
	FeatureComplexityScore:    kindNumeric,
	FeatureTitleLength:        kindNumeric,
	FeatureBodySystem:         kindCategorical,
	FeatureImagingModality:    kindCategorical,
	FeatureComplexityCategory: kindCategorical,
	FeatureHasMultipleImages:  kindBoolean,
}

// Matrix is a prepared feature matrix: one row per case, one column per
// selected feature, in selection order.
type Matrix struct {
	Rows  [][]float64
	Names []string
}

// PrepareFeatures builds the feature matrix for the selected columns.
// Unknown names are skipped; categorical columns are label-encoded with
// alphabetically ordered codes so encoding is deterministic.
func PrepareFeatures(cases []RefinedCase, selected []string) (*Matrix, error) {
	if len(cases) == 0 {
		return nil, ErrNoData
	}

	var columns [][]float64
	var names []string
	for _, name := range selected {
		kind, ok := featureKinds[name]
		if !ok {
			continue
		}

		column := make([]float64, len(cases))
		switch kind {
		case kindNumeric:
			for i, c := range cases {
				column[i] = numericValue(c, name)
			}
		case kindCategorical:
			codes := labelEncode(categoricalColumn(cases, name))
			for i, code := range codes {
				column[i] = float64(code)
			}
		case kindBoolean:
			for i, c := range cases {
				if c.HasMultipleImages {
					column[i] = 1
				}
			}
		}
		columns = append(columns, column)
		names = append(names, name)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w (got %v)", ErrNoValidFeatures, selected)
	}

	rows := make([][]float64, len(cases))
	for i := range rows {
		row := make([]float64, len(columns))
		for j, column := range columns {
			row[j] = column[i]
		}
		rows[i] = row
	}
	return &Matrix{Rows: rows, Names: names}, nil
}

func numericValue(c RefinedCase, name string) float64 {
	switch name {
	case FeatureComplexityScore:
		return c.ComplexityScore
	case FeatureTitleLength:
		return c.TitleLength
	}
	return 0
}

func categoricalColumn(cases []RefinedCase, name string) []string {
	values := make([]string, len(cases))
	for i, c := range cases {
		switch name {
		case FeatureBodySystem:
			values[i] = c.BodySystem
		case FeatureImagingModality:
			values[i] = c.ImagingModality
		case FeatureComplexityCategory:
			values[i] = c.ComplexityCategory
		}
	}
	return values
}

// labelEncode maps each distinct value to its rank in the sorted distinct
// set.
func labelEncode(values []string) []int {
	distinct := make(map[string]bool, len(values))
	for _, v := range values {
		distinct[v] = true
	}
	ordered := make([]string, 0, len(distinct))
	for v := range distinct {
		ordered = append(ordered, v)
	}
	sort.Strings(ordered)

	codes := make(map[string]int, len(ordered))
	for i, v := range ordered {
		codes[v] = i
	}

	encoded := make([]int, len(values))
	for i, v := range values {
		encoded[i] = codes[v]
	}
	return encoded
}
