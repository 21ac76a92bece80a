package vectorstore

import (
	"context"
	"testing"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	col, err := store.CreateCollection(ctx, "afp_uno")
	require.NoError(t, err)
	assert.Equal(t, "afp_uno", col.Name())

	_, err = store.CreateCollection(ctx, "afp_uno")
	assert.ErrorIs(t, err, domain.ErrCollectionAlreadyExists)

	got, err := store.GetCollection(ctx, "afp_uno")
	require.NoError(t, err)
	assert.Equal(t, "afp_uno", got.Name())

	names, err = store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"afp_uno"}, names)

	require.NoError(t, store.DeleteCollection(ctx, "afp_uno"))
	_, err = store.GetCollection(ctx, "afp_uno")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	// Deleting an absent collection is a no-op.
	assert.NoError(t, store.DeleteCollection(ctx, "afp_uno"))
}

func TestMemoryCollection_UpsertAndCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	records := []domain.Record{
		{ID: "a", Text: "uno", Embedding: []float32{1, 0}},
		{ID: "b", Text: "dos", Embedding: []float32{0, 1}},
	}
	require.NoError(t, col.Upsert(ctx, records))

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Overwriting by ID does not grow the collection.
	require.NoError(t, col.Upsert(ctx, []domain.Record{
		{ID: "a", Text: "uno actualizado", Embedding: []float32{1, 0}},
	}))
	count, err = col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryCollection_UpsertRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	err = col.Upsert(ctx, []domain.Record{{ID: "a", Text: "", Embedding: []float32{1}}})
	assert.ErrorIs(t, err, domain.ErrEmptyChunk)

	err = col.Upsert(ctx, []domain.Record{{ID: "a", Text: "x"}})
	assert.ErrorIs(t, err, domain.ErrEmptyEmbedding)
}

func TestMemoryCollection_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	require.NoError(t, col.Upsert(ctx, []domain.Record{
		{ID: "a", Text: "uno", Embedding: []float32{1, 0}},
	}))

	err = col.Upsert(ctx, []domain.Record{
		{ID: "b", Text: "dos", Embedding: []float32{1, 0, 0}},
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = col.Query(ctx, []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Matching dimensions still work after the rejected writes.
	matches, err := col.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMemoryCollection_QueryOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	require.NoError(t, col.Upsert(ctx, []domain.Record{
		{ID: "a", Text: "idéntico", Embedding: []float32{1, 0}},
		{ID: "b", Text: "ortogonal", Embedding: []float32{0, 1}},
		{ID: "c", Text: "opuesto", Embedding: []float32{-1, 0}},
	}))

	matches, err := col.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "idéntico", matches[0].Text)
	assert.InDelta(t, 0, matches[0].Distance, 1e-6)
	assert.Equal(t, "ortogonal", matches[1].Text)
	assert.InDelta(t, 1, matches[1].Distance, 1e-6)
	assert.Equal(t, "opuesto", matches[2].Text)
	assert.InDelta(t, 2, matches[2].Distance, 1e-6)
}

func TestMemoryCollection_QueryTopKLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	require.NoError(t, col.Upsert(ctx, []domain.Record{
		{ID: "a", Text: "uno", Embedding: []float32{1, 0}},
		{ID: "b", Text: "dos", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Text: "tres", Embedding: []float32{0, 1}},
	}))

	matches, err := col.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMemoryCollection_QueryEmptyEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	col, err := store.CreateCollection(ctx, "test")
	require.NoError(t, err)

	_, err = col.Query(ctx, nil, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyEmbedding)
}
