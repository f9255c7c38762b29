package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	entryRecordPrefix = "entrec"
	entryDatePrefix   = "entrecd"
	chunkRecordPrefix = "chkrec"
	chunkParentPrefix = "chkpar"
)

// makeEntryKey generates a key for an entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryRecordPrefix, id))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeEntryDateKey generates a composite key for the entry recency index.
// Format: prefix:timestamp:id
func makeEntryDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := entryDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkParentKey generates a composite key for the parent index.
// Format: prefix:parentID:ordinal
func makeChunkParentKey(parent core.ID, ordinal int) []byte {
	prefix := chunkParentPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(parent))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	return buf
}

// makePartialChunkParentKey generates a partial key for per-entry chunk scans.
// Format: prefix:parentID
func makePartialChunkParentKey(parent core.ID) []byte {
	prefix := chunkParentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(parent))
	return buf
}
