//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/platwave/unogpt/internal/pagination"
	"github.com/platwave/unogpt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistoryRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	first, err := repo.Create(ctx, "¿Qué es una AFP?", "Administra fondos de pensiones.")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := repo.Create(ctx, "¿Cómo cambio de fondo?", "Desde el sitio web.")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Oldest first.
	assert.Equal(t, "¿Qué es una AFP?", entries[0].Question)
	assert.Equal(t, "¿Cómo cambio de fondo?", entries[1].Question)
}

func TestChatHistoryRepository_ListRecentLimit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("pregunta %d", i), fmt.Sprintf("respuesta %d", i))
		require.NoError(t, err)
	}

	entries, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The two newest, still in chronological order.
	assert.Equal(t, "pregunta 3", entries[0].Question)
	assert.Equal(t, "pregunta 4", entries[1].Question)
}

func TestChatHistoryRepository_RecentTurns(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	_, err := repo.Create(ctx, "q", "a")
	require.NoError(t, err)

	turns, err := repo.RecentTurns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "q", turns[0].Question)
	assert.Equal(t, "a", turns[0].Answer)
}

func TestChatHistoryRepository_ListPage(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("pregunta %d", i), fmt.Sprintf("respuesta %d", i))
		require.NoError(t, err)
	}

	page, err := repo.ListPage(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.Cursor)

	// Newest first.
	assert.Equal(t, "pregunta 4", page.Items[0].Question)
	assert.Equal(t, "pregunta 3", page.Items[1].Question)

	page, err = repo.ListPage(ctx, page.Cursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "pregunta 2", page.Items[0].Question)
	assert.Equal(t, "pregunta 1", page.Items[1].Question)

	page, err = repo.ListPage(ctx, page.Cursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "pregunta 0", page.Items[0].Question)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestChatHistoryRepository_ListPageInvalidCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	_, err := repo.ListPage(ctx, "not-base64!", 10)
	assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
}

func TestChatHistoryRepository_Clear(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChatHistoryRepository(pool)

	_, err := repo.Create(ctx, "q", "a")
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
