package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"hetman-rag/internal/cache"
	"hetman-rag/internal/config"
	"hetman-rag/internal/corpus"
	"hetman-rag/internal/http"
	"hetman-rag/internal/indexer"
	"hetman-rag/internal/llm"
	"hetman-rag/internal/photo"
	"hetman-rag/internal/rag"
	"hetman-rag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	ctx := context.Background()

	// Initialize vector store
	var vectorStore vectorstore.VectorStore
	if cfg.VectorStore == "memory" {
		vectorStore = vectorstore.NewMemoryStore()
		slog.Info("Using in-memory vector store")
	} else {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		vectorStore = qdrantStore
		slog.Info("Qdrant client ready", "url", cfg.QdrantURL)
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.VectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.VectorSize)

	// Create indexing pipeline
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

	// Index the corpus at startup. A missing or empty corpus directory is
	// recoverable: the service starts and answers with the index advisory
	// until POST /api/index succeeds.
	result, err := pipeline.Run(ctx)
	switch {
	case err == nil:
		slog.Info("Corpus indexed", "chunks", result.Chunks, "indexed", result.Indexed, "skipped", result.Skipped)
	case errors.Is(err, corpus.ErrNoCorpusDir), errors.Is(err, corpus.ErrEmptyCorpus):
		slog.Warn("Corpus not available yet, serving without an index", "error", err)
	default:
		log.Fatalf("Failed to index corpus: %v", err)
	}

	// Response cache
	responseCache, err := cache.New(cfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to load response cache: %v", err)
	}
	slog.Info("Response cache loaded", "path", cfg.CachePath, "entries", responseCache.Len())

	// Create the Q&A engine
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModelName)
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, cfg.TopK)
	synthesizer := rag.NewSynthesizer(llmClient)
	engine := rag.NewEngine(responseCache, retriever, synthesizer)
	slog.Info("Q&A engine initialized", "model", cfg.LLMModelName, "top_k", cfg.TopK)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:     engine,
		Photos:     photo.NewLookup(cfg.PhotoDir),
		Pipeline:   pipeline,
		Store:      vectorStore,
		Collection: cfg.QdrantCollection,
		PhotoDir:   cfg.PhotoDir,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           nethttp.TimeoutHandler(router, cfg.RequestTimeout, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("API server failed to start: %v", err)
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
