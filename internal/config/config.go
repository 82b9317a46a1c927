package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
//
// The chunking and retrieval ranges mirror the limits the corpus was tuned
// with; values outside them either produce degenerate windows (overlap close
// to the window size) or blow past the embedding model's context.
type Config struct {
	CorpusDir    string
	ChunkSetPath string
	CachePath    string
	PhotoDir     string

	VectorStore      string `validate:"oneof=qdrant memory"`
	QdrantURL        string
	QdrantCollection string
	VectorSize       int `validate:"gt=0"`

	ChunkSize      int    `validate:"gte=300,lte=800,gtfield=ChunkOverlap"`
	ChunkOverlap   int    `validate:"gte=100,lte=300"`
	TopK           int    `validate:"gte=1,lte=10"`
	EmbedBatchSize int    `validate:"gt=0"`
	IndexPolicy    string `validate:"oneof=skip rebuild"`

	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMBaseURL         string
	LLMModelName       string
	OpenAIAPIKey       string

	APIPort        string
	RequestTimeout time.Duration
	LogLevel       string `validate:"oneof=debug info warn error"`
	LogFormat      string `validate:"oneof=json text"`
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates ranges.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		CorpusDir:    getEnv("CORPUS_DIR", "./hetman_files"),
		ChunkSetPath: getEnv("CHUNKS_PATH", "./chunks.json"),
		CachePath:    getEnv("CACHE_PATH", "./cache.json"),
		PhotoDir:     getEnv("PHOTO_DIR", "./photo"),

		VectorStore:      getEnv("VECTOR_STORE", "qdrant"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "hetmans"),

		IndexPolicy: getEnv("INDEX_POLICY", "skip"),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),

		APIPort:   getEnv("API_PORT", "9000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	// Note: VECTOR_SIZE must match the output vector size of the embeddings
	// model (1536 for text-embedding-3-small). If it changes, the Qdrant
	// collection must be recreated.
	if cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 1536); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K", 5); err != nil {
		return nil, err
	}
	if cfg.EmbedBatchSize, err = getEnvInt("EMBED_BATCH_SIZE", 64); err != nil {
		return nil, err
	}

	timeoutSec, err := getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second

	if err := validator.New().Struct(cfg); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		e := errs[0]
		return nil, fmt.Errorf("config validation: field %s failed on '%s' tag (value %v)", e.Field(), e.Tag(), e.Value())
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
