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


// Package storage provides the artifact storage abstraction for caselens.
//
// The offline feature pipeline seeds a database with case records, the
// ordered case-id list, one row set per embedding space, the TF-IDF
// vectorizer artifact, and per-space metadata. At startup the service reads
// everything back into memory and never writes again; the repositories here
// exist for the seeding path and the one-time load, not for request-time
// queries.
//
// # Constructor Return Type Pattern
//
// Public constructors return the repository interfaces defined in this
// package to keep callers decoupled from the BadgerDB implementation:
//
//	repo, err := badger.NewCaseRepository(backend)  // returns storage.CaseRepository
//
// # Row Ordering
//
// The stored case order is the single source of row identity: row i of every
// embedding space belongs to the i-th id in the stored case order. Loaders
// must reject matrices whose row count disagrees with the case order.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use.
package storage
