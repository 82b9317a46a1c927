package rag

import (
	"context"
	"strings"

	"hetman-rag/internal/cache"
	"hetman-rag/internal/contextutil"
)

// Answer is the result of a grounded query.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Cached  bool     `json:"cached"`
}

// Engine ties the query path together: cache first, then retrieval and
// synthesis on a miss, writing the fresh result back into the cache.
type Engine struct {
	cache       *cache.ResponseCache
	retriever   *Retriever
	synthesizer *Synthesizer
}

// NewEngine creates the query engine.
func NewEngine(responseCache *cache.ResponseCache, retriever *Retriever, synthesizer *Synthesizer) *Engine {
	return &Engine{
		cache:       responseCache,
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

// Ask answers a query. A cache hit returns the stored answer without
// touching the embedding or generation services. On a miss the retrieved
// unique chunks are synthesized into a cited answer; answer and sources use
// the same 1-based positions. The cache write happening after retrieval is
// not atomic with respect to a concurrent identical query; duplicate work
// is acceptable since results are idempotent per query.
func (e *Engine) Ask(ctx context.Context, query string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)
	query = strings.TrimSpace(query)

	if entry, ok := e.cache.Get(query); ok {
		logger.InfoContext(ctx, "cache hit", "query", query)
		return Answer{Answer: entry.Answer, Sources: entry.Sources, Cached: true}, nil
	}

	chunks, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return Answer{}, err
	}

	answer := e.synthesizer.GenerateResponse(ctx, query, chunks)
	sources := Sources(chunks)

	if err := e.cache.Put(query, answer, sources); err != nil {
		// The answer is still returned; only future hits are lost.
		logger.WarnContext(ctx, "failed to persist cache entry", "error", err)
	}

	logger.InfoContext(ctx, "query answered", "query", query, "sources", len(sources))
	return Answer{Answer: answer, Sources: sources}, nil
}
