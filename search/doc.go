// Copyright 2025 Poiesic Systems
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


// Package search answers queries over stored chunks.
//
// The Searcher type implements five retrieval methods:
//   - Vector search using embedding similarity
//   - Keyword search using BM25-style lexical scoring
//   - Hybrid search blending vector and keyword scores
//   - MMR re-ranking a vector pool for diversity
//   - Multi-query fusion of several reformulations via Reciprocal Rank Fusion
//
// All methods return results ordered by score descending and capped at the
// request limit. An empty candidate pool yields an empty result list, never
// an error.
package search
