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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrSpaceNotFound indicates that no rows exist for the requested
	// embedding space.
	ErrSpaceNotFound = errors.New("embedding space not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrRowCountMismatch indicates that a matrix does not have one row per
	// case in the stored case order.
	ErrRowCountMismatch = errors.New("row count does not match case order")

	// ErrRowGap indicates a missing row index inside a stored matrix.
	ErrRowGap = errors.New("row index gap in stored matrix")
)
