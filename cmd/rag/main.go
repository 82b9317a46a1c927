package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"hetman-rag/internal/cache"
	"hetman-rag/internal/config"
	"hetman-rag/internal/corpus"
	"hetman-rag/internal/indexer"
	"hetman-rag/internal/llm"
	"hetman-rag/internal/photo"
	"hetman-rag/internal/rag"
	"hetman-rag/internal/vectorstore"
)

// Interactive console loop over the same pipeline the API serves. Questions
// are answered from the cache when possible; "фото <ім'я>" resolves a local
// image path; q/quit/exit leaves the loop.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr so the answers on stdout stay readable.
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))

	ctx := context.Background()

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

	pipeline := indexer.NewPipeline(indexer.Config{
		CorpusDir:    cfg.CorpusDir,
		ChunkSetPath: cfg.ChunkSetPath,
		Collection:   cfg.QdrantCollection,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		VectorSize:   cfg.VectorSize,
		BatchSize:    cfg.EmbedBatchSize,
		Policy:       indexer.Policy(cfg.IndexPolicy),
	}, embedder, vectorStore)

	result, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, corpus.ErrNoCorpusDir) || errors.Is(err, corpus.ErrEmptyCorpus) {
			log.Fatalf("Corpus not available: %v", err)
		}
		log.Fatalf("Failed to index corpus: %v", err)
	}
	fmt.Printf("Індекс готовий: %d чанків (пропущено: %v)\n", result.Chunks, result.Skipped)

	responseCache, err := cache.New(cfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to load response cache: %v", err)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModelName)
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, cfg.TopK)
	engine := rag.NewEngine(responseCache, retriever, rag.NewSynthesizer(llmClient))
	photos := photo.NewLookup(cfg.PhotoDir)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("RAG-система готова! (q — вихід)")
	fmt.Println(strings.Repeat("=", 60))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nЗапит: ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(query) {
		case "q", "quit", "exit":
			fmt.Println("До зустрічі!")
			return
		}
		if utf8.RuneCountInString(query) < 3 {
			fmt.Println("Запит занадто короткий.")
			continue
		}

		if photo.IsCommand(query) {
			path, answer := photos.Resolve(photo.Name(query))
			fmt.Println(answer)
			if path != "" {
				fmt.Println(path)
			}
			continue
		}

		answer, err := engine.Ask(ctx, query)
		if err != nil {
			if errors.Is(err, rag.ErrIndexNotReady) {
				fmt.Println(rag.IndexNotReadyMessage)
				continue
			}
			slog.Error("query failed", "error", err)
			fmt.Println("Сталася помилка. Спробуйте ще раз.")
			continue
		}

		fmt.Println("\nВідповідь:")
		fmt.Println(answer.Answer)
		if len(answer.Sources) > 0 {
			fmt.Println("\nДжерела:")
			fmt.Println(strings.Join(answer.Sources, " | "))
		}
	}
}

// parseLogLevel maps the configured level name to a slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
