package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hetman-rag/internal/contextutil"
	"hetman-rag/internal/corpus"
	"hetman-rag/internal/indexer"
)

// IndexHandler handles HTTP requests that trigger corpus indexing.
type IndexHandler struct {
	pipeline *indexer.Pipeline
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline *indexer.Pipeline) *IndexHandler {
	return &IndexHandler{pipeline: pipeline}
}

// ServeHTTP runs the indexing pipeline and reports what it did. An absent or
// empty corpus is a client-visible condition (422), not a server failure; the
// skip policy makes repeated calls cheap and safe.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	result, err := h.pipeline.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "indexing failed", "error", err)
		if errors.Is(err, corpus.ErrNoCorpusDir) || errors.Is(err, corpus.ErrEmptyCorpus) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "Indexing failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
