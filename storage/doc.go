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


// Package storage defines the persistence boundary of the engine: the entry
// and chunk repository interfaces, their error values, and the MUS
// serialization glue for stored records.
//
// The engine assumes the store is externally synchronized and adds no
// consistency guarantees of its own: concurrent ingestion and retrieval over
// the same chunk set have read-after-write consistency only as strong as the
// backing store provides, and readers may observe partially ingested entries
// mid-ingestion on an eventually consistent backend.
package storage
