package core

import (
	"strconv"
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "plain content",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestEntryID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("deterministic for identical input", func(t *testing.T) {
		id1 := EntryID("src", "text", now)
		id2 := EntryID("src", "text", now)
		if id1 != id2 {
			t.Errorf("EntryID() not deterministic: %d vs %d", id1, id2)
		}
	})

	t.Run("reingestion at a later time produces a new ID", func(t *testing.T) {
		id1 := EntryID("src", "text", now)
		id2 := EntryID("src", "text", now.Add(time.Microsecond))
		if id1 == id2 {
			t.Error("EntryID() ignored the ingestion timestamp")
		}
	})

	t.Run("source participates in the ID", func(t *testing.T) {
		id1 := EntryID("a", "text", now)
		id2 := EntryID("b", "text", now)
		if id1 == id2 {
			t.Error("EntryID() ignored the source")
		}
	})
}

func TestChunkID(t *testing.T) {
	parent := IDFromContent("parent")

	t.Run("ordinal participates in the ID", func(t *testing.T) {
		id1 := ChunkID(parent, 0, "same text")
		id2 := ChunkID(parent, 1, "same text")
		if id1 == id2 {
			t.Error("ChunkID() ignored the ordinal")
		}
	})

	t.Run("parent participates in the ID", func(t *testing.T) {
		id1 := ChunkID(parent, 0, "same text")
		id2 := ChunkID(parent+1, 0, "same text")
		if id1 == id2 {
			t.Error("ChunkID() ignored the parent")
		}
	})
}

func TestParseID(t *testing.T) {
	original := IDFromContent("round trip")
	parsed, err := ParseID(strconv.FormatUint(uint64(original), 10))
	if err != nil {
		t.Fatalf("ParseID() failed: %v", err)
	}
	if parsed != original {
		t.Errorf("ParseID() round trip mismatch: %d vs %d", parsed, original)
	}

	if _, err := ParseID("not-a-number"); err == nil {
		t.Error("ParseID() accepted garbage")
	}
	if _, err := ParseID("-1"); err == nil {
		t.Error("ParseID() accepted a negative value")
	}
}
