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

// Package projection serves precomputed 2D projection artifacts for
// scatter-plot visualization.
//
// The artifacts are JSON files written by the offline feature pipeline:
// per-method coordinate sets, a clinically enhanced coordinate set with
// category, symptom and cluster annotations, and a precomputed similar-case
// lookup with clinical explanations. Files are loaded lazily on first
// request and cached for the life of the process.
//
// A missing artifact is an availability condition, not a lookup failure:
// requests against an absent file report unavailable, while a case id
// missing from a loaded lookup reports not found.
package projection
