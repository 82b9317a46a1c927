package config

import (
	"os"
	"testing"
	"time"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"CORPUS_DIR", "CHUNKS_PATH", "CACHE_PATH", "PHOTO_DIR",
	"VECTOR_STORE", "QDRANT_URL", "QDRANT_COLLECTION", "VECTOR_SIZE",
	"CHUNK_SIZE", "CHUNK_OVERLAP", "TOP_K", "EMBED_BATCH_SIZE", "INDEX_POLICY",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "LLM_BASE_URL", "LLM_MODEL",
	"OPENAI_API_KEY", "API_PORT", "REQUEST_TIMEOUT_SECONDS",
	"LOG_LEVEL", "LOG_FORMAT",
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with only the API key",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.OpenAIAPIKey == "sk-test" &&
					cfg.CorpusDir == "./hetman_files" &&
					cfg.ChunkSize == 500 &&
					cfg.ChunkOverlap == 100 &&
					cfg.TopK == 5 &&
					cfg.VectorSize == 1536 &&
					cfg.EmbedBatchSize == 64 &&
					cfg.VectorStore == "qdrant" &&
					cfg.QdrantCollection == "hetmans" &&
					cfg.IndexPolicy == "skip" &&
					cfg.APIPort == "9000" &&
					cfg.RequestTimeout == 60*time.Second &&
					cfg.LogLevel == "info" &&
					cfg.LogFormat == "text"
			},
		},
		{
			name:     "missing OPENAI_API_KEY",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "chunk size below range",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "200")
			},
			wantErr: true,
		},
		{
			name: "chunk size above range",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "900")
			},
			wantErr: true,
		},
		{
			name: "overlap above range",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("CHUNK_OVERLAP", "350")
			},
			wantErr: true,
		},
		{
			name: "overlap not below chunk size",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "300")
				setEnv("CHUNK_OVERLAP", "300")
			},
			wantErr: true,
		},
		{
			name: "top_k out of range",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("TOP_K", "11")
			},
			wantErr: true,
		},
		{
			name: "top_k at range boundaries",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("TOP_K", "1")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.TopK == 1
			},
		},
		{
			name: "non-integer CHUNK_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "unknown vector store",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("VECTOR_STORE", "pinecone")
			},
			wantErr: true,
		},
		{
			name: "unknown index policy",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("INDEX_POLICY", "merge")
			},
			wantErr: true,
		},
		{
			name: "unknown log format",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("VECTOR_STORE", "memory")
				setEnv("INDEX_POLICY", "rebuild")
				setEnv("CHUNK_SIZE", "800")
				setEnv("CHUNK_OVERLAP", "300")
				setEnv("CORPUS_DIR", "/srv/corpus")
				setEnv("REQUEST_TIMEOUT_SECONDS", "15")
				setEnv("LOG_FORMAT", "json")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorStore == "memory" &&
					cfg.IndexPolicy == "rebuild" &&
					cfg.ChunkSize == 800 &&
					cfg.ChunkOverlap == 300 &&
					cfg.CorpusDir == "/srv/corpus" &&
					cfg.RequestTimeout == 15*time.Second &&
					cfg.LogFormat == "json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without .env file to avoid loading it
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir) // Ignore error - test will fail if this doesn't work
			defer func() {
				_ = os.Chdir(originalWd) // Ignore error in cleanup
			}()

			// Clean up env vars before each test
			for _, key := range envVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed")
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		defaultValue string
		want         string
	}{
		{
			name:         "env var set",
			setupEnv:     func() { setEnv("TEST_ENV_VAR", "set-value") },
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name:         "env var not set",
			setupEnv:     func() { unsetEnv("TEST_ENV_VAR") },
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "empty env var uses default",
			setupEnv:     func() { setEnv("TEST_ENV_VAR", "") },
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv("TEST_ENV_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}
