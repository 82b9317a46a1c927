package corpus

import "fmt"

// Document represents one source text unit loaded from the corpus directory.
// Documents are created once during corpus load and never mutated.
type Document struct {
	DocID   string // Stable ordinal-derived identifier (e.g. "hetman_03")
	DocName string // Display title, taken from the first line of the source file
	DocPath string // Path of the source file
	Text    string // Chunkable body (title line excluded)
}

// Chunk is a contiguous window of a document's body. Together with its
// document it forms the atomic unit of retrieval and citation.
type Chunk struct {
	DocID       string `json:"doc_id"`
	DocName     string `json:"doc_name"`
	DocPath     string `json:"doc_path"`
	ChunkNumber int    `json:"chunk_number"` // 1-based, sequential within a document
	ChunkText   string `json:"chunk_text"`
}

// ID returns the logical chunk identity. DocPath plus ChunkNumber uniquely
// identifies a chunk; retrieval deduplication keys on this value.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s#%d", c.DocPath, c.ChunkNumber)
}
