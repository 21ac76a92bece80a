// Package vectorstore defines the vector collection abstraction and its
// Postgres/pgvector and in-memory implementations.
package vectorstore

import (
	"context"

	"github.com/platwave/unogpt/internal/domain"
)

// Store manages named vector collections. At most one collection per name
// exists at any time.
type Store interface {
	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CreateCollection creates a new empty collection. Returns
	// domain.ErrCollectionAlreadyExists when the name is taken.
	CreateCollection(ctx context.Context, name string) (Collection, error)

	// GetCollection returns a handle to an existing collection. Returns
	// domain.ErrCollectionNotFound when absent.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// DeleteCollection removes a collection and all of its records.
	// Deleting an absent collection is a no-op.
	DeleteCollection(ctx context.Context, name string) error
}

// Collection is a handle to one named set of indexed records.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert writes records by ID, inserting or overwriting. Atomic per
	// call.
	Upsert(ctx context.Context, records []domain.Record) error

	// Query returns the topK nearest neighbors of the embedding, closest
	// first, with the store's distance per match.
	Query(ctx context.Context, embedding []float32, topK int) ([]domain.QueryMatch, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)
}
