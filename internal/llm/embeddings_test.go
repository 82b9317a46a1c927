package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := map[string]any{"data": []map[string]any{}}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float64{0.1, 0.2, 0.3}}
		}
		resp["data"] = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-key", "multilingual-e5-large", 3)
	vectors, err := client.EmbedTexts(context.Background(), []string{"перший", "другий"})
	if err != nil {
		t.Fatalf("EmbedTexts() unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 3 {
		t.Errorf("vector size = %d, want 3", len(vectors[0]))
	}
}

func TestEmbedTexts_SizeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.1, 0.2}}},
		})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for wrong vector size")
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://unused", "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestEmbedTexts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for non-200 status")
	}
}
