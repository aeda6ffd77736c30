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

import "errors"

// Error taxonomy. Every error crossing the request boundary wraps exactly one
// of these sentinels, so transports can map failures to status classes with
// errors.Is and nothing else.
var (
	// ErrNotFound indicates an unknown case id or lookup entry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed request: empty query text,
	// out-of-range top_k or text_weight, or an unknown method.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates an optional embedding space that did not load.
	ErrUnavailable = errors.New("embedding space unavailable")

	// ErrCorruptArtifact indicates a malformed stored artifact. It is fatal
	// during startup loading and an internal error at request time.
	ErrCorruptArtifact = errors.New("corrupt artifact")
)

// Domain validation errors. All wrap ErrInvalidInput.
var (
	// ErrEmptyQueryText indicates an empty free-text query.
	ErrEmptyQueryText = errors.New("query text cannot be empty")

	// ErrTopKOutOfRange indicates top_k outside the accepted 1..50 range.
	ErrTopKOutOfRange = errors.New("top_k must be between 1 and 50")

	// ErrWeightOutOfRange indicates text_weight outside [0,1].
	ErrWeightOutOfRange = errors.New("text_weight must be between 0 and 1")

	// ErrUnknownMethod indicates a method outside tfidf|bert|image|hybrid.
	ErrUnknownMethod = errors.New("unknown similarity method")

	// ErrEmptyCaseID indicates a Case with no identifier.
	ErrEmptyCaseID = errors.New("case id cannot be empty")
)
