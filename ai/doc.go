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


// Package ai defines the embedding-provider boundary of the engine.
//
// The engine treats embedding generation as an external collaborator: the
// Embedder interface converts text into fixed-dimension vectors and is
// assumed to be slow and network-bound. Concrete implementations live in
// subpackages (ai/openai for OpenAI-compatible services, ai/mock for tests).
package ai
