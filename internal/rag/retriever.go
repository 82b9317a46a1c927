package rag

import (
	"context"
	"errors"
	"fmt"

	"hetman-rag/internal/contextutil"
	"hetman-rag/internal/vectorstore"
)

// ErrIndexNotReady is returned when a query arrives before the collection
// exists. This is the "index not built" state, distinct from "no matches
// found", and callers surface it as an advisory rather than a failure.
var ErrIndexNotReady = errors.New("vector index has not been built yet")

// IndexNotReadyMessage is the user-facing advisory shown for ErrIndexNotReady.
const IndexNotReadyMessage = "Індекс ще не побудовано. Спочатку виконайте індексацію корпусу."

// maxContextChunks is the number of unique chunks handed to the synthesizer.
// The store is over-fetched (TopK) and narrowed to this after deduplication,
// so fewer unique chunks than TopK still yield a full context when possible.
const maxContextChunks = 3

// Embedder computes the query embedding. It must be the same embedding
// function used at index time; mixing models breaks vector space
// compatibility and silently corrupts retrieval.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever embeds a query, searches the vector store and narrows the raw
// candidates to a bounded set of unique chunks.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	topK       int
}

// NewRetriever creates a retriever. topK is the raw candidate fan-out
// requested from the store before deduplication.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, topK int) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		topK:       topK,
	}
}

// Retrieve returns up to maxContextChunks unique candidates ranked by
// similarity to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]vectorstore.Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := r.store.CollectionExists(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		logger.WarnContext(ctx, "query before index build", "collection", r.collection)
		return nil, ErrIndexNotReady
	}

	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	candidates, err := r.store.Query(ctx, r.collection, vectors[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	unique := DedupByID(candidates)
	if len(unique) > maxContextChunks {
		unique = unique[:maxContextChunks]
	}

	logger.DebugContext(ctx, "retrieval completed",
		"raw_candidates", len(candidates),
		"unique", len(unique),
	)
	return unique, nil
}

// DedupByID removes repeated hits that reference the same underlying chunk,
// keyed by doc_path#chunk_number. The first (highest-ranked) occurrence
// wins and the original rank order among survivors is preserved; this is a
// stable filter, not a re-sort.
func DedupByID(candidates []vectorstore.Candidate) []vectorstore.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]vectorstore.Candidate, 0, len(candidates))
	for _, c := range candidates {
		id := fmt.Sprintf("%s#%d", c.Meta.DocPath, c.Meta.ChunkNumber)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
