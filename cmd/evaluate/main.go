package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"hetman-rag/internal/config"
	"hetman-rag/internal/evaluate"
	"hetman-rag/internal/llm"
	"hetman-rag/internal/rag"
	"hetman-rag/internal/vectorstore"
)

// Scores retrieval quality over a labeled test-query set against the built
// index. The query path is exactly the serving one: embed, over-fetch,
// dedup, truncate. Run it after indexing; an unbuilt index is a hard error
// here, not an advisory.
func main() {
	queriesPath := "test_queries.json"
	if len(os.Args) > 1 {
		queriesPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))

	queries, err := evaluate.LoadTestQueries(queriesPath)
	if err != nil {
		log.Fatalf("Failed to load test queries: %v", err)
	}

	var vectorStore vectorstore.VectorStore
	if cfg.VectorStore == "memory" {
		vectorStore = vectorstore.NewMemoryStore()
	} else {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		vectorStore = qdrantStore
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, cfg.TopK)

	report, err := evaluate.Run(context.Background(), retriever, queries)
	if err != nil {
		if errors.Is(err, rag.ErrIndexNotReady) {
			log.Fatalf("%s", rag.IndexNotReadyMessage)
		}
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("ОЦІНКА ЯКОСТІ РЕТРІВАЛУ")
	fmt.Println(strings.Repeat("=", 60))

	for _, r := range report.Results {
		status := "ПОМИЛКА"
		if r.Hit {
			status = "ПРАВИЛЬНО"
		}
		fmt.Printf("%s %s\n", status, r.Query)
		fmt.Printf("   Очікувано: %s\n", r.Expected)
		fmt.Printf("   Знайдено: %s\n\n", strings.Join(r.Found, ", "))
	}

	fmt.Printf("Середній Hit@3: %.2f (%d/%d)\n", report.HitRate(), report.Hits, len(report.Results))
}
