package indexer

import (
	"context"
	"fmt"
	"strings"

	"hetman-rag/internal/contextutil"
	"hetman-rag/internal/corpus"
	"hetman-rag/internal/vectorstore"
)

// Policy controls what BuildIndex does when the collection already holds
// records. Exactly one policy is active per deployment.
type Policy string

const (
	// PolicySkip leaves an already-populated collection untouched. The core
	// never diffs or upserts partial changes.
	PolicySkip Policy = "skip"
	// PolicyRebuild drops and recreates the collection unconditionally,
	// re-embedding everything.
	PolicyRebuild Policy = "rebuild"
)

// Embedder computes embedding vectors for a batch of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds the pipeline tunables taken from the process configuration.
type Config struct {
	CorpusDir    string
	ChunkSetPath string
	Collection   string
	ChunkSize    int
	ChunkOverlap int
	VectorSize   int
	BatchSize    int // Embedding batch size; memory/throughput trade-off only
	Policy       Policy
}

// Result reports what an indexing run did.
type Result struct {
	Chunks  int  `json:"chunks"`
	Indexed int  `json:"indexed"`
	Skipped bool `json:"skipped"`
}

// Pipeline orchestrates the one-time corpus indexing: load documents, chunk,
// persist the chunk set, embed in batches and populate the vector store.
type Pipeline struct {
	cfg      Config
	embedder Embedder
	store    vectorstore.VectorStore
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(cfg Config, embedder Embedder, store vectorstore.VectorStore) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicySkip
	}
	return &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
	}
}

// CreateChunks produces the ordered chunk set for the corpus.
//
// If a chunk-set artifact already exists it is loaded verbatim and chunking
// is skipped entirely, even if the source documents changed since. That
// staleness is a deliberate trade-off: the artifact, not the corpus
// directory, is the source of truth once written.
//
// A missing or empty corpus directory is a recoverable, reported condition:
// the error wraps corpus.ErrNoCorpusDir or corpus.ErrEmptyCorpus and the
// caller decides whether to keep serving.
func (p *Pipeline) CreateChunks(ctx context.Context) ([]corpus.Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if corpus.ChunkSetExists(p.cfg.ChunkSetPath) {
		logger.InfoContext(ctx, "chunk set already exists, loading", "path", p.cfg.ChunkSetPath)
		return corpus.LoadChunkSet(p.cfg.ChunkSetPath)
	}

	docs, err := corpus.LoadDocuments(p.cfg.CorpusDir)
	if err != nil {
		logger.WarnContext(ctx, "corpus load failed", "dir", p.cfg.CorpusDir, "error", err)
		return nil, err
	}

	var chunks []corpus.Chunk
	for _, doc := range docs {
		pieces, err := corpus.SplitIntoChunks(doc.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document %s: %w", doc.DocID, err)
		}
		for i, piece := range pieces {
			chunks = append(chunks, corpus.Chunk{
				DocID:       doc.DocID,
				DocName:     doc.DocName,
				DocPath:     doc.DocPath,
				ChunkNumber: i + 1,
				ChunkText:   strings.TrimSpace(piece),
			})
		}
	}

	if err := corpus.SaveChunkSet(p.cfg.ChunkSetPath, chunks); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "chunk set created", "chunks", len(chunks), "documents", len(docs), "path", p.cfg.ChunkSetPath)
	return chunks, nil
}

// BuildIndex populates the vector store with the given chunks.
//
// With PolicySkip an already-populated collection short-circuits the build:
// nothing is embedded and the existing records stay as they are. With
// PolicyRebuild the collection is dropped and recreated first. Empty input
// is a reported no-op; the vector store is not contacted at all.
func (p *Pipeline) BuildIndex(ctx context.Context, chunks []corpus.Chunk) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks to index, skipping index build")
		return Result{}, nil
	}

	if p.cfg.Policy == PolicyRebuild {
		exists, err := p.store.CollectionExists(ctx, p.cfg.Collection)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check collection: %w", err)
		}
		if exists {
			logger.InfoContext(ctx, "rebuild policy active, dropping collection", "collection", p.cfg.Collection)
			if err := p.store.DeleteCollection(ctx, p.cfg.Collection); err != nil {
				return Result{}, fmt.Errorf("failed to drop collection: %w", err)
			}
		}
	}

	if err := p.store.EnsureCollection(ctx, p.cfg.Collection, p.cfg.VectorSize); err != nil {
		return Result{}, fmt.Errorf("failed to ensure collection: %w", err)
	}

	if p.cfg.Policy == PolicySkip {
		count, err := p.store.Count(ctx, p.cfg.Collection)
		if err != nil {
			return Result{}, fmt.Errorf("failed to count collection records: %w", err)
		}
		if count > 0 {
			logger.InfoContext(ctx, "index already populated, skipping", "collection", p.cfg.Collection, "records", count)
			return Result{Chunks: len(chunks), Skipped: true}, nil
		}
	}

	indexed := 0
	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.ChunkText
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return Result{}, fmt.Errorf("failed to embed batch at offset %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return Result{}, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, chunk := range batch {
			points[i] = vectorstore.Point{
				ID:     fmt.Sprintf("chunk_%d", start+i),
				Vector: vectors[i],
				Text:   chunk.ChunkText,
				Meta: vectorstore.ChunkMeta{
					DocID:       chunk.DocID,
					DocName:     chunk.DocName,
					DocPath:     chunk.DocPath,
					ChunkNumber: chunk.ChunkNumber,
				},
			}
		}

		if err := p.store.Upsert(ctx, p.cfg.Collection, points); err != nil {
			return Result{}, fmt.Errorf("failed to upsert batch at offset %d: %w", start, err)
		}
		indexed += len(batch)
	}

	logger.InfoContext(ctx, "index built", "collection", p.cfg.Collection, "records", indexed)
	return Result{Chunks: len(chunks), Indexed: indexed}, nil
}

// Run executes the full indexing flow: chunk set first, then the index.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	chunks, err := p.CreateChunks(ctx)
	if err != nil {
		return Result{}, err
	}
	return p.BuildIndex(ctx, chunks)
}
