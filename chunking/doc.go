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


// Package chunking splits raw text into ordered retrievable pieces.
//
// Five strategies (fixed, sentence, paragraph, sliding, recursive) are pure
// functions of the text and options, dispatched through Split. The sixth,
// semantic, embeds every sentence through an ai.Embedder and is exposed as
// the separate SplitSemantic so callers can see statically which strategies
// require provider availability.
package chunking
