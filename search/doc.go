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

// Package search ranks cases by similarity over the loaded embedding spaces.
//
// The Searcher type implements the query operations:
//   - Similar-case lookup by case id over a single space
//   - Hybrid lookup combining text and image similarity with a weight
//   - Free-text search through the TF-IDF or sentence-embedding encoder
//   - Side-by-side method comparison with overlap statistics
//
// Ranking is exact brute-force cosine over the in-memory matrices. Results
// are ordered by descending score with ties broken by original row order,
// and returned either complete or not at all.
package search
