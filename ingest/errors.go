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

package ingest

import "errors"

var (
	// ErrCaseRepositoryRequired is returned when a case repository is not provided.
	ErrCaseRepositoryRequired = errors.New("case repository required")

	// ErrFeatureRepositoryRequired is returned when a feature repository is not provided.
	ErrFeatureRepositoryRequired = errors.New("feature repository required")

	// ErrMissingCase is returned when the ordered id list names a case that
	// has no record in the cases artifact.
	ErrMissingCase = errors.New("case order references unknown case")
)
