package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/platwave/unogpt/internal/domain"
)

// MemoryStore is an in-memory Store using brute-force cosine distance.
// Intended for tests and small local setups.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return nil, domain.ErrCollectionAlreadyExists
	}
	col := &memoryCollection{name: name, records: make(map[string]domain.Record)}
	s.collections[name] = col
	return col, nil
}

func (s *MemoryStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	return col, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, name)
	return nil
}

type memoryCollection struct {
	mu      sync.RWMutex
	name    string
	dim     int // fixed by the first upserted record
	records map[string]domain.Record
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Upsert(ctx context.Context, records []domain.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		if rec.Text == "" {
			return domain.ErrEmptyChunk
		}
		if len(rec.Embedding) == 0 {
			return domain.ErrEmptyEmbedding
		}
		if c.dim == 0 {
			c.dim = len(rec.Embedding)
		} else if len(rec.Embedding) != c.dim {
			return domain.ErrDimensionMismatch
		}
		c.records[rec.ID] = rec
	}
	return nil
}

func (c *memoryCollection) Query(ctx context.Context, embedding []float32, topK int) ([]domain.QueryMatch, error) {
	if len(embedding) == 0 {
		return nil, domain.ErrEmptyEmbedding
	}
	if topK <= 0 {
		topK = 8
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Postgres rejects a query vector of the wrong dimension; so do we.
	if c.dim != 0 && len(embedding) != c.dim {
		return nil, domain.ErrDimensionMismatch
	}

	matches := make([]domain.QueryMatch, 0, len(c.records))
	for _, rec := range c.records {
		matches = append(matches, domain.QueryMatch{
			Text:     rec.Text,
			Metadata: rec.Metadata,
			Distance: cosineDistance(embedding, rec.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Text < matches[j].Text
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (c *memoryCollection) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}

// cosineDistance is 1 - cosine similarity, matching pgvector's <=> operator.
// Callers guarantee equal dimensions.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
