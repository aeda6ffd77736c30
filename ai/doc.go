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


// Package ai defines the embedding service abstraction used to encode
// free-text queries into the dense sentence-embedding space.
//
// The stored dense matrix was produced offline by a specific
// sentence-embedding model; query-time encoding must go through the same
// model, so the provider is configured with that model's identifier and the
// searcher rejects vectors whose dimensionality disagrees with the stored
// matrix.
//
// Subpackages provide implementations:
//   - openai: OpenAI-compatible embedding APIs (Ollama, LocalAI, vLLM, ...)
//   - mock: deterministic embedder for testing
package ai
