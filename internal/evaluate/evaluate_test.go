package evaluate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"hetman-rag/internal/rag"
	"hetman-rag/internal/vectorstore"
)

// queryEmbedder maps each known query text to a fixed vector.
type queryEmbedder struct {
	vectors map[string][]float32
}

func (q *queryEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := q.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func seedStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.EnsureCollection(ctx, "hetmans", 2); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	points := []vectorstore.Point{
		{
			ID:     "chunk_0",
			Vector: []float32{1, 0},
			Text:   "Богдан Хмельницький підписав Переяславську угоду 1654 року.",
			Meta:   vectorstore.ChunkMeta{DocID: "hetman_01", DocName: "Богдан Хмельницький", DocPath: "hetman_files/Хмельницький.txt", ChunkNumber: 1},
		},
		{
			ID:     "chunk_1",
			Vector: []float32{0, 1},
			Text:   "Іван Мазепа уклав союз із Карлом XII проти Петра I.",
			Meta:   vectorstore.ChunkMeta{DocID: "hetman_02", DocName: "Іван Мазепа", DocPath: "hetman_files/Мазепа.txt", ChunkNumber: 1},
		},
	}
	if err := store.Upsert(ctx, "hetmans", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return store
}

func TestRun_ScoresHitsAndMisses(t *testing.T) {
	embedder := &queryEmbedder{vectors: map[string][]float32{
		"Хто підписав Переяславську угоду з Москвою?":         {1, 0},
		"Який гетьман уклав союз із Карлом XII проти Петра I?": {0, 1},
		"Хто був останнім гетьманом України?":                 {1, 0},
	}}
	retriever := rag.NewRetriever(embedder, seedStore(t), "hetmans", 5)

	queries := []TestQuery{
		{Query: "Хто підписав Переяславську угоду з Москвою?", ExpectedDoc: "Хмельницький.txt"},
		{Query: "Який гетьман уклав союз із Карлом XII проти Петра I?", ExpectedDoc: "Мазепа.txt"},
		// Document not in the corpus: must score as a miss, not an error.
		{Query: "Хто був останнім гетьманом України?", ExpectedDoc: "Розумовський.txt"},
	}

	report, err := Run(context.Background(), retriever, queries)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Hits != 2 {
		t.Errorf("hits = %d, want 2", report.Hits)
	}
	if got := report.HitRate(); got < 0.66 || got > 0.67 {
		t.Errorf("hit rate = %v, want 2/3", got)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}

	first := report.Results[0]
	if !first.Hit {
		t.Error("expected first query to hit")
	}
	if len(first.Found) == 0 || first.Found[0] != "Хмельницький.txt" {
		t.Errorf("found = %v, want Хмельницький.txt ranked first", first.Found)
	}
	if report.Results[2].Hit {
		t.Error("query for an absent document must be a miss")
	}
}

func TestRun_RetrievalErrorAborts(t *testing.T) {
	embedder := &queryEmbedder{vectors: map[string][]float32{}}
	// No collection: retrieval reports the unbuilt index.
	retriever := rag.NewRetriever(embedder, vectorstore.NewMemoryStore(), "hetmans", 5)

	_, err := Run(context.Background(), retriever, []TestQuery{{Query: "Хто такий Мазепа?", ExpectedDoc: "Мазепа.txt"}})
	if !errors.Is(err, rag.ErrIndexNotReady) {
		t.Errorf("Run() error = %v, want ErrIndexNotReady", err)
	}
}

func TestLoadTestQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_queries.json")
	content := `[
  {
    "query": "Хто вважається засновником Запорозької Січі?",
    "expected_doc": "Байда-Вишневецький.txt",
    "topic": "Дмитро Вишневецький"
  }
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test queries: %v", err)
	}

	queries, err := LoadTestQueries(path)
	if err != nil {
		t.Fatalf("LoadTestQueries() error = %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(queries))
	}
	if queries[0].ExpectedDoc != "Байда-Вишневецький.txt" {
		t.Errorf("expected_doc = %q", queries[0].ExpectedDoc)
	}
	if queries[0].Topic != "Дмитро Вишневецький" {
		t.Errorf("topic = %q", queries[0].Topic)
	}
}

func TestLoadTestQueries_EmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_queries.json")
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("failed to write test queries: %v", err)
	}
	if _, err := LoadTestQueries(path); err == nil {
		t.Error("LoadTestQueries() expected error for an empty set")
	}
}

func TestLoadTestQueries_MissingFile(t *testing.T) {
	if _, err := LoadTestQueries(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadTestQueries() expected error for a missing file")
	}
}

func TestHitRate_Empty(t *testing.T) {
	if got := (Report{}).HitRate(); got != 0 {
		t.Errorf("HitRate() = %v, want 0", got)
	}
}
