// Package ingest persists chunked documents into a vector collection.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/vectorstore"
)

// DefaultBatchSize bounds peak memory and respects embedding-API batch
// limits.
const DefaultBatchSize = 200

// Policy selects how the target collection is resolved for a run. Callers
// must pick one policy per collection name and stick with it: mixing Reuse
// and Rebuild runs accumulates duplicate or stale records.
type Policy string

const (
	// PolicyReuse looks the collection up by name and creates it only
	// when absent.
	PolicyReuse Policy = "reuse"
	// PolicyRebuild deletes any existing collection of that name first,
	// then creates it fresh.
	PolicyRebuild Policy = "rebuild"
)

// ParsePolicy validates a policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyReuse, PolicyRebuild:
		return Policy(s), nil
	default:
		return "", domain.ErrInvalidPolicy
	}
}

// Embedder generates embeddings for a batch of texts.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// Writer embeds chunks in batches and upserts them into a named vector
// collection, assigning a fresh unique identifier per record.
type Writer struct {
	store      vectorstore.Store
	embedder   Embedder
	collection string
	batchSize  int
}

// Option configures a Writer.
type Option func(*Writer)

// WithBatchSize overrides the upsert batch size.
func WithBatchSize(n int) Option {
	return func(w *Writer) { w.batchSize = n }
}

func NewWriter(store vectorstore.Store, embedder Embedder, collection string, opts ...Option) *Writer {
	w := &Writer{
		store:      store,
		embedder:   embedder,
		collection: collection,
		batchSize:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write persists all non-empty chunks under the given policy and returns the
// number of records written. Each batch is embedded with one collaborator
// call and upserted as one atomic operation.
func (w *Writer) Write(ctx context.Context, chunks []domain.Chunk, policy Policy) (int, error) {
	if w.batchSize <= 0 {
		return 0, domain.ErrInvalidBatchSize
	}

	kept := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if !chunk.Empty() {
			kept = append(kept, chunk)
		}
	}

	col, err := w.resolveCollection(ctx, policy)
	if err != nil {
		return 0, err
	}

	written := 0
	for start := 0; start < len(kept); start += w.batchSize {
		end := start + w.batchSize
		if end > len(kept) {
			end = len(kept)
		}
		batch := kept[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := w.embedder.EmbedMany(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return written, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(batch))
		}

		records := make([]domain.Record, len(batch))
		for i, chunk := range batch {
			records[i] = domain.Record{
				ID:        uuid.NewString(),
				Text:      chunk.Content,
				Metadata:  chunk.Metadata,
				Embedding: embeddings[i],
			}
		}

		if err := col.Upsert(ctx, records); err != nil {
			return written, fmt.Errorf("failed to upsert batch: %w", err)
		}
		written += len(records)
	}

	log.Printf("ingest: saved %d chunks to collection %s", written, w.collection)
	return written, nil
}

func (w *Writer) resolveCollection(ctx context.Context, policy Policy) (vectorstore.Collection, error) {
	switch policy {
	case PolicyReuse:
		col, err := w.store.GetCollection(ctx, w.collection)
		if err == nil {
			return col, nil
		}
		if !errors.Is(err, domain.ErrCollectionNotFound) {
			return nil, err
		}
		return w.store.CreateCollection(ctx, w.collection)
	case PolicyRebuild:
		if err := w.store.DeleteCollection(ctx, w.collection); err != nil {
			return nil, err
		}
		return w.store.CreateCollection(ctx, w.collection)
	default:
		return nil, domain.ErrInvalidPolicy
	}
}
