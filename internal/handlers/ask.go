package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"hetman-rag/internal/contextutil"
	"hetman-rag/internal/photo"
	"hetman-rag/internal/rag"
)

// AskHandler handles HTTP requests for grounded Q&A queries.
type AskHandler struct {
	engine *rag.Engine
	photos *photo.Lookup
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine *rag.Engine, photos *photo.Lookup) *AskHandler {
	return &AskHandler{
		engine: engine,
		photos: photos,
	}
}

// AskRequest represents the HTTP request payload for Q&A queries.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for Q&A queries.
type AskResponse struct {
	// Answer is the generated (or cached, or advisory) answer text.
	Answer string `json:"answer"`

	// Sources lists the citation lines, lockstep with the [n] markers
	// in the answer. Empty for photo commands and advisories.
	Sources []string `json:"sources"`

	// Image is the served path of a resolved photo, if the question was
	// a photo command with a hit.
	Image string `json:"image,omitempty"`

	// Cached reports whether the answer was served from the response cache.
	Cached bool `json:"cached"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for Q&A queries.
//
// The question is trimmed and routed: the "фото <name>" command goes to the
// photo lookup without touching the pipeline; everything else goes through
// cache, retrieval and synthesis. A missing index yields an advisory answer
// with status 200, not an error.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if utf8.RuneCountInString(question) < 3 {
		logger.WarnContext(ctx, "question too short")
		writeError(w, http.StatusBadRequest, "Запит занадто короткий.")
		return
	}

	if photo.IsCommand(question) {
		name := photo.Name(question)
		path, answer := h.photos.Resolve(name)
		logger.InfoContext(ctx, "photo command", "name", name, "found", path != "")
		image := ""
		if path != "" {
			// The router serves the photo directory under /images/.
			image = "/images/" + filepath.Base(path)
		}
		h.writeJSON(w, AskResponse{
			Answer:  answer,
			Sources: []string{},
			Image:   image,
		})
		return
	}

	result, err := h.engine.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, rag.ErrIndexNotReady) {
			logger.WarnContext(ctx, "index not ready", "error", err)
			h.writeJSON(w, AskResponse{
				Answer:  rag.IndexNotReadyMessage,
				Sources: []string{},
			})
			return
		}
		h.handleEngineError(w, r, err)
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	h.writeJSON(w, AskResponse{
		Answer:  result.Answer,
		Sources: sources,
		Cached:  result.Cached,
	})
}

// handleEngineError maps pipeline errors to appropriate HTTP status codes.
func (h *AskHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "ask pipeline error", "error", err)

	errMsg := strings.ToLower(err.Error())

	// Vector store errors -> 503
	if strings.Contains(errMsg, "vector store") ||
		strings.Contains(errMsg, "collection") ||
		strings.Contains(errMsg, "qdrant") {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	// Embedding service errors -> 502
	if strings.Contains(errMsg, "embed") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to process query")
}

// writeJSON writes a successful JSON response.
func (h *AskHandler) writeJSON(w http.ResponseWriter, resp AskResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
