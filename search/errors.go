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

package search

import (
	"errors"
	"fmt"

	"github.com/caselens/caselens/core"
)

var (
	// ErrStoreRequired is returned when a feature store is not provided.
	ErrStoreRequired = errors.New("feature store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoImageSpace is returned when an image or hybrid query is made
	// against a store that was loaded without image embeddings.
	ErrNoImageSpace = fmt.Errorf("image embeddings not loaded: %w", core.ErrUnavailable)

	// ErrDimensionMismatch is returned when a query embedding does not match
	// the dimensionality of the stored matrix. This indicates the serving
	// model disagrees with the model that produced the artifacts.
	ErrDimensionMismatch = errors.New("query embedding dimensionality mismatch")
)
