package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine search.
// It backs the VECTOR_STORE=memory deployment mode and the test suite; the
// corpus is small enough that a linear scan is perfectly adequate.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	points     []Point
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be positive, got %d", vectorSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection]
	if !ok {
		s.collections[collection] = &memoryCollection{vectorSize: vectorSize}
		return nil
	}
	if existing.vectorSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, existing.vectorSize)
	}
	return nil
}

func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %q does not exist", collection)
	}
	return len(c.points), nil
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	for _, p := range points {
		if len(p.Vector) != c.vectorSize {
			return fmt.Errorf("vector size mismatch for point %s: expected %d, got %d", p.ID, c.vectorSize, len(p.Vector))
		}
	}

	for _, p := range points {
		replaced := false
		for i := range c.points {
			if c.points[i].ID == p.ID {
				c.points[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			c.points = append(c.points, p)
		}
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, vector []float32, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	// Vectors are assumed L2-normalized, so the dot product is the cosine
	// similarity and 1-dot is the cosine distance.
	candidates := make([]Candidate, 0, len(c.points))
	for _, p := range c.points {
		candidates = append(candidates, Candidate{
			Meta:     p.Meta,
			Distance: 1 - dot(p.Vector, vector),
			Text:     p.Text,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (s *MemoryStore) DeleteCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
