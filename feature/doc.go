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

// Package feature loads the embedding-space artifacts into memory and serves
// them to the ranking layer.
//
// A Store is built once at startup from the storage repositories: the ordered
// case list, an id to row-index map, the TF-IDF and sentence-embedding
// matrices, the optional image matrix, the TF-IDF vectorizer, and per-space
// metadata. The spaces are loaded concurrently; any failure on a required
// space fails the whole load.
//
// Row order is the single source of identity. Every matrix row i describes
// the i-th case in the stored case order, and the Store refuses to load when
// any present matrix disagrees with that order's length.
//
// A loaded Store is immutable. All accessors are safe for concurrent use
// without locking.
package feature
