package vectorstore

import (
	"context"
	"testing"
)

func TestMemoryStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	exists, err := store.CollectionExists(ctx, "hetmans")
	if err != nil {
		t.Fatalf("CollectionExists() unexpected error: %v", err)
	}
	if exists {
		t.Fatal("collection should not exist before EnsureCollection")
	}

	if err := store.EnsureCollection(ctx, "hetmans", 4); err != nil {
		t.Fatalf("EnsureCollection() unexpected error: %v", err)
	}
	// Idempotent for a matching size, error on mismatch.
	if err := store.EnsureCollection(ctx, "hetmans", 4); err != nil {
		t.Fatalf("EnsureCollection() second call unexpected error: %v", err)
	}
	if err := store.EnsureCollection(ctx, "hetmans", 8); err == nil {
		t.Fatal("EnsureCollection() with mismatched vector size should fail")
	}

	if err := store.DeleteCollection(ctx, "hetmans"); err != nil {
		t.Fatalf("DeleteCollection() unexpected error: %v", err)
	}
	exists, _ = store.CollectionExists(ctx, "hetmans")
	if exists {
		t.Error("collection should not exist after DeleteCollection")
	}
}

func TestMemoryStore_QueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.EnsureCollection(ctx, "hetmans", 2); err != nil {
		t.Fatalf("EnsureCollection() unexpected error: %v", err)
	}

	points := []Point{
		{ID: "chunk_0", Vector: []float32{1, 0}, Text: "exact match", Meta: ChunkMeta{DocID: "hetman_01", ChunkNumber: 1}},
		{ID: "chunk_1", Vector: []float32{0, 1}, Text: "orthogonal", Meta: ChunkMeta{DocID: "hetman_02", ChunkNumber: 1}},
		{ID: "chunk_2", Vector: []float32{0.7071, 0.7071}, Text: "diagonal", Meta: ChunkMeta{DocID: "hetman_03", ChunkNumber: 1}},
	}
	if err := store.Upsert(ctx, "hetmans", points); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	count, err := store.Count(ctx, "hetmans")
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("Count() = %d, want 3", count)
	}

	candidates, err := store.Query(ctx, "hetmans", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query() unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Query() returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].Text != "exact match" {
		t.Errorf("top candidate = %q, want the exact match", candidates[0].Text)
	}
	if candidates[1].Text != "diagonal" {
		t.Errorf("second candidate = %q, want the diagonal vector", candidates[1].Text)
	}
	if candidates[0].Distance >= candidates[1].Distance {
		t.Error("candidates are not ordered by increasing distance")
	}
}

func TestMemoryStore_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.EnsureCollection(ctx, "hetmans", 2); err != nil {
		t.Fatalf("EnsureCollection() unexpected error: %v", err)
	}

	first := []Point{{ID: "chunk_0", Vector: []float32{1, 0}, Text: "old"}}
	second := []Point{{ID: "chunk_0", Vector: []float32{1, 0}, Text: "new"}}
	if err := store.Upsert(ctx, "hetmans", first); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if err := store.Upsert(ctx, "hetmans", second); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	count, _ := store.Count(ctx, "hetmans")
	if count != 1 {
		t.Fatalf("Count() = %d after re-upserting same id, want 1", count)
	}
	candidates, err := store.Query(ctx, "hetmans", []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query() unexpected error: %v", err)
	}
	if candidates[0].Text != "new" {
		t.Errorf("upsert did not replace point text, got %q", candidates[0].Text)
	}
}

func TestMemoryStore_VectorSizeMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.EnsureCollection(ctx, "hetmans", 3); err != nil {
		t.Fatalf("EnsureCollection() unexpected error: %v", err)
	}

	err := store.Upsert(ctx, "hetmans", []Point{{ID: "chunk_0", Vector: []float32{1, 0}}})
	if err == nil {
		t.Error("expected error for mismatched vector size")
	}
}
