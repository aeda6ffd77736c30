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

// Package ingest seeds the storage layer from exported feature-pipeline
// artifacts.
//
// The artifacts are JSON files produced offline: the case records, the
// ordered case-id list that defines row identity, the TF-IDF matrix in CSR
// form together with its vectorizer, the dense sentence embeddings, the
// optional image embeddings, and per-space metadata. The pipeline validates
// cross-artifact consistency (row counts, feature widths, id coverage)
// before anything is committed, then writes cases concurrently through a
// worker pool.
//
// When an embedder is configured, cases whose dense text row is missing are
// backfilled by embedding their clinical text with the serving model.
package ingest
