package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks hetman-rag/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrMalformedPayload is returned when a stored payload is missing a field
// the retrieval path depends on. Results from the store are never trusted
// blindly; a missing field is a declared error, not a panic downstream.
var ErrMalformedPayload = errors.New("malformed vector store payload")

// ChunkMeta is the typed metadata attached to every stored vector.
type ChunkMeta struct {
	DocID       string
	DocName     string
	DocPath     string
	ChunkNumber int
}

// Point is one embedding record: the vector, the chunk text it represents,
// and the chunk metadata, written atomically as a single record.
type Point struct {
	ID     string // Synthetic record id ("chunk_<i>")
	Vector []float32
	Text   string
	Meta   ChunkMeta
}

// Candidate is one ranked result of a similarity query. It is ephemeral and
// scoped to a single query call.
type Candidate struct {
	Meta     ChunkMeta
	Distance float32 // Cosine distance; lower is closer
	Text     string
}

// VectorStore defines the persistent nearest-neighbor index the indexer
// writes to and the retriever queries.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// validates the vector size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Upsert writes points into the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query returns up to k candidates ranked by similarity to vector.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Candidate, error)

	// DeleteCollection drops the collection and all of its records.
	DeleteCollection(ctx context.Context, collection string) error
}
