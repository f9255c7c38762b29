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


package core

import (
	"fmt"
	"time"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ChunkCount must not be negative
//   - InsertedAt must not be in the future
//
// NOT validated:
//   - ID (any value is acceptable; IDs are content-derived)
//   - Title, Tags, Source (optional descriptive fields)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyText)
	}

	if entry.ChunkCount < 0 {
		return fmt.Errorf("%w: negative chunk count %d", ErrInvalidEntry, entry.ChunkCount)
	}

	if !IsValidTimestamp(entry.InsertedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ParentId must be set
//   - Ordinal must lie in [0, Siblings)
//
// NOT validated:
//   - Vector (may be empty until the embedding step runs)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.ParentId == 0 {
		return fmt.Errorf("%w: parent id is not set", ErrInvalidChunk)
	}

	if chunk.Ordinal < 0 || chunk.Ordinal >= chunk.Siblings {
		return fmt.Errorf("%w: %w: ordinal %d, siblings %d",
			ErrInvalidChunk, ErrOrdinalOutOfRange, chunk.Ordinal, chunk.Siblings)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
