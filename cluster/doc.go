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

// Package cluster groups refined case records with K-means over tabular
// features.
//
// Features are selected by name from three kinds: numeric columns used
// as-is, categorical columns mapped through alphabetical label encoding,
// and boolean columns mapped to 0/1. The selected columns are standardized
// to zero mean and unit variance before clustering.
//
// Clustering runs Lloyd's algorithm with k-means++ seeding, restarted
// several times with the best run chosen by inertia. Results are
// deterministic for a fixed seed. Row assignment inside each iteration is
// parallelized across a worker pool.
package cluster
