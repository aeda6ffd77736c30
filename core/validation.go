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


package core

import (
	"fmt"
	"strings"
)

// TopK bounds accepted by all ranking operations.
const (
	MinTopK = 1
	MaxTopK = 50
)

// ValidateCase validates a Case according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//
// NOT validated (populated by the feature pipeline):
//   - optional clinical text fields (may be empty for sparse source records)
//   - image paths (cases without imagery are valid)
func ValidateCase(c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidInput)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyCaseID)
	}
	return nil
}

// ValidateTopK checks that k is within the accepted range.
func ValidateTopK(k int) error {
	if k < MinTopK || k > MaxTopK {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidInput, ErrTopKOutOfRange, k)
	}
	return nil
}

// ValidateTextWeight checks that the hybrid fusion weight is within [0,1].
func ValidateTextWeight(w float64) error {
	if w < 0 || w > 1 {
		return fmt.Errorf("%w: %w (got %g)", ErrInvalidInput, ErrWeightOutOfRange, w)
	}
	return nil
}

// ValidateQueryText checks that free-text query input is non-empty.
func ValidateQueryText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQueryText)
	}
	return nil
}

// ParseMethod validates a method name and returns the typed Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodTFIDF, MethodBERT, MethodImage, MethodHybrid:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%w: %w %q", ErrInvalidInput, ErrUnknownMethod, s)
	}
}
