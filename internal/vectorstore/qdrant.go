package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"hetman-rag/internal/contextutil"
)

// Payload field names used for every stored point.
const (
	payloadRecordID    = "record_id"
	payloadChunkText   = "chunk_text"
	payloadDocID       = "doc_id"
	payloadDocName     = "doc_name"
	payloadDocPath     = "doc_path"
	payloadChunkNumber = "chunk_number"
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) is derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// pointUUID maps a synthetic record id to a stable Qdrant point id.
// Qdrant requires UUID (or integer) point ids; a v5 UUID over the record id
// keeps the mapping deterministic so a rebuild overwrites instead of
// accumulating duplicates.
func pointUUID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}

// EnsureCollection creates the collection with cosine distance if it does not
// exist, or validates the configured vector size if it does.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil || vectorsConfig.GetParams() == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	actualSize := vectorsConfig.GetParams().Size
	if int(actualSize) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}
	return nil
}

// CollectionExists reports whether a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored points in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}
	if info.PointsCount == nil {
		return 0, nil
	}
	return int(*info.PointsCount), nil
}

// Upsert writes points into the collection. Vector, chunk text and metadata
// travel together in one record per point.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointUUID(point.ID)),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadRecordID:    point.ID,
				payloadChunkText:   point.Text,
				payloadDocID:       point.Meta.DocID,
				payloadDocName:     point.Meta.DocName,
				payloadDocPath:     point.Meta.DocPath,
				payloadChunkNumber: point.Meta.ChunkNumber,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Query performs a similarity search and decodes each payload into a typed
// candidate. A payload missing an expected field fails the whole query with
// ErrMalformedPayload rather than slipping a partial result through.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	candidates := make([]Candidate, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		meta, text, err := decodePayload(point.Payload)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{
			Meta: meta,
			// Qdrant reports cosine similarity; the pipeline works with
			// distances, lower meaning closer.
			Distance: 1 - point.Score,
			Text:     text,
		})
	}

	logger.DebugContext(ctx, "query completed", "collection", collection, "k", k, "results", len(candidates))
	return candidates, nil
}

// DeleteCollection drops the collection and everything in it.
func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// decodePayload validates and converts a stored payload into typed chunk
// metadata plus the chunk text.
func decodePayload(payload map[string]*qdrant.Value) (ChunkMeta, string, error) {
	text, err := payloadString(payload, payloadChunkText)
	if err != nil {
		return ChunkMeta{}, "", err
	}
	docID, err := payloadString(payload, payloadDocID)
	if err != nil {
		return ChunkMeta{}, "", err
	}
	docName, err := payloadString(payload, payloadDocName)
	if err != nil {
		return ChunkMeta{}, "", err
	}
	docPath, err := payloadString(payload, payloadDocPath)
	if err != nil {
		return ChunkMeta{}, "", err
	}

	numValue, ok := payload[payloadChunkNumber]
	if !ok {
		return ChunkMeta{}, "", fmt.Errorf("%w: missing field %q", ErrMalformedPayload, payloadChunkNumber)
	}
	intValue, ok := numValue.Kind.(*qdrant.Value_IntegerValue)
	if !ok {
		return ChunkMeta{}, "", fmt.Errorf("%w: field %q is not an integer", ErrMalformedPayload, payloadChunkNumber)
	}

	return ChunkMeta{
		DocID:       docID,
		DocName:     docName,
		DocPath:     docPath,
		ChunkNumber: int(intValue.IntegerValue),
	}, text, nil
}

func payloadString(payload map[string]*qdrant.Value, field string) (string, error) {
	value, ok := payload[field]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedPayload, field)
	}
	stringValue, ok := value.Kind.(*qdrant.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q is not a string", ErrMalformedPayload, field)
	}
	return stringValue.StringValue, nil
}
