package badger

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/recall/core"
)

func TestVectorSearch(t *testing.T) {
	entryRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); entryRepo.Close(); backend.Close() }()

	ctx := context.Background()
	parent := core.IDFromContent("vs-parent")

	aligned := testChunk(parent, 0, 4, "aligned fragment", []float32{1, 0, 0})
	near := testChunk(parent, 1, 4, "near fragment", []float32{0.9, 0.1, 0})
	orthogonal := testChunk(parent, 2, 4, "orthogonal fragment", []float32{0, 1, 0})
	unembedded := testChunk(parent, 3, 4, "no vector yet", nil)

	if err := chunkRepo.AddChunks(ctx, aligned, near, orthogonal, unembedded); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	t.Run("orders by ascending distance", func(t *testing.T) {
		matches, err := backend.VectorSearch(ctx, []float32{1, 0, 0}, 10, nil)
		if err != nil {
			t.Fatalf("VectorSearch failed: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("Expected 3 matches (unembedded excluded), got %d", len(matches))
		}
		if matches[0].Chunk.Id != aligned.Id {
			t.Fatalf("Expected the aligned chunk first, got %q", matches[0].Chunk.Text)
		}
		if matches[2].Chunk.Id != orthogonal.Id {
			t.Fatalf("Expected the orthogonal chunk last, got %q", matches[2].Chunk.Text)
		}
		for i := 1; i < len(matches); i++ {
			if matches[i].Distance < matches[i-1].Distance {
				t.Fatal("Matches not sorted by ascending distance")
			}
		}
	})

	t.Run("limit applies after sorting", func(t *testing.T) {
		matches, err := backend.VectorSearch(ctx, []float32{1, 0, 0}, 1, nil)
		if err != nil {
			t.Fatalf("VectorSearch failed: %v", err)
		}
		if len(matches) != 1 || matches[0].Chunk.Id != aligned.Id {
			t.Fatalf("Expected only the aligned chunk, got %d matches", len(matches))
		}
	})

	t.Run("filter restricts the pool", func(t *testing.T) {
		tagged := testChunk(core.IDFromContent("vs-other-parent"), 0, 1, "tagged variant", []float32{1, 0, 0})
		tagged.Tags = []string{"special"}
		if err := chunkRepo.AddChunks(ctx, tagged); err != nil {
			t.Fatalf("Failed to add chunk: %v", err)
		}

		matches, err := backend.VectorSearch(ctx, []float32{1, 0, 0}, 10, &core.Filter{Tags: []string{"special"}})
		if err != nil {
			t.Fatalf("VectorSearch failed: %v", err)
		}
		if len(matches) != 1 || matches[0].Chunk.Id != tagged.Id {
			t.Fatalf("Expected only the tagged chunk, got %d matches", len(matches))
		}
	})

	t.Run("identical query is deterministic", func(t *testing.T) {
		first, err := backend.VectorSearch(ctx, []float32{0.5, 0.5, 0}, 10, nil)
		if err != nil {
			t.Fatalf("VectorSearch failed: %v", err)
		}
		second, err := backend.VectorSearch(ctx, []float32{0.5, 0.5, 0}, 10, nil)
		if err != nil {
			t.Fatalf("VectorSearch failed: %v", err)
		}
		if len(first) != len(second) {
			t.Fatalf("Result count changed between identical queries")
		}
		for i := range first {
			if first[i].Chunk.Id != second[i].Chunk.Id {
				t.Fatal("Result order changed between identical queries")
			}
		}
	})
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical direction", []float32{1, 0}, []float32{2, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector is maximally distant", []float32{0, 0}, []float32{1, 0}, 2},
		{"length mismatch is maximally distant", []float32{1}, []float32{1, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("cosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	if backend.IsClosed() {
		t.Fatal("Backend should be open")
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !backend.IsClosed() {
		t.Fatal("Backend should be closed")
	}
}
