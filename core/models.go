package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntryID generates the ID for an entry from its source, full text and
// ingestion timestamp. Re-ingesting the same text produces a new entry
// rather than mutating the old one.
func EntryID(source, text string, ingestedAt time.Time) ID {
	return IDFromContent(fmt.Sprintf("%s\n%s\n%d", source, text, ingestedAt.UnixMicro()))
}

// ParseID parses the decimal form produced by printing an ID.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(v), nil
}

// ChunkID generates the ID for a chunk from its parent entry and position.
func ChunkID(parent ID, ordinal int, text string) ID {
	return IDFromContent(fmt.Sprintf("%d:%d:%s", parent, ordinal, text))
}

// Entry represents a whole ingested document. Entries are created atomically
// with their chunk batch and deleted together with all their chunks; they are
// never partially updated.
type Entry struct {
	Id          ID
	Title       string
	Text        string
	Source      string
	Confidence  string
	Tags        []string
	ContentType string
	Strategy    string
	ChunkCount  int // Invariant: equals the number of chunks with ParentId == Id
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Chunk represents one retrievable fragment of an entry. Parent metadata is
// denormalized onto every chunk so retrieval filters never need a join.
type Chunk struct {
	Id          ID
	ParentId    ID
	Text        string
	Vector      []float32 // Embedding vector; length is always the provider's fixed dimension
	Ordinal     int       // Position within the parent, contiguous from 0
	Siblings    int       // Total chunk count of the parent
	Strategy    string
	Level       string // Hierarchy level for recursive chunking: "section", "paragraph" or "sentence"
	Heading     string // Originating markdown heading, recursive chunking only
	Title       string
	Source      string
	Confidence  string
	Tags        []string
	ContentType string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// SearchResult represents a chunk projected with a relevance score in [0,1]
// and the provenance of the method that produced it. Results are constructed
// fresh per query and never persisted.
type SearchResult struct {
	Chunk  *Chunk
	Score  float32
	Method string
}

// EntryReceipt is returned by ingestion as a document-level summary.
type EntryReceipt struct {
	Id         ID
	Title      string
	ChunkCount int
	Strategy   string
	Source     string
	Confidence string
	Tags       []string
	InsertedAt time.Time
}

// Stats summarizes the stored corpus.
type Stats struct {
	EntryCount        int
	ChunkCount        int
	AvgChunksPerEntry float64
	ByStrategy        map[string]int
	BySource          map[string]int
	ByConfidence      map[string]int
}
