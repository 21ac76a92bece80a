package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/pagination"
)

type ChatHistoryRepository struct {
	db dbtx
}

func NewChatHistoryRepository(pool *pgxpool.Pool) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: pool}
}

func (r *ChatHistoryRepository) Create(ctx context.Context, question, answer string) (*domain.ChatEntry, error) {
	var entry domain.ChatEntry
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_history (question, answer)
		 VALUES ($1, $2)
		 RETURNING id, question, answer, created_at`,
		question, answer,
	).Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListRecent returns the most recent entries in chronological order, oldest
// first, ready to render as conversation history.
func (r *ChatHistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.ChatEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, question, answer, created_at
		 FROM (
			 SELECT id, question, answer, created_at
			 FROM chat_history
			 ORDER BY id DESC
			 LIMIT $1
		 ) recent
		 ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ChatEntry
	for rows.Next() {
		var entry domain.ChatEntry
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RecentTurns is ListRecent projected onto conversation turns.
func (r *ChatHistoryRepository) RecentTurns(ctx context.Context, limit int) ([]domain.Turn, error) {
	entries, err := r.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, len(entries))
	for i, entry := range entries {
		turns[i] = entry.Turn()
	}
	return turns, nil
}

// ListPage returns a page of entries, newest first, using a keyset cursor.
func (r *ChatHistoryRepository) ListPage(ctx context.Context, cursor string, limit int) (*pagination.PageResult[domain.ChatEntry], error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, question, answer, created_at
		 FROM chat_history`
	args := []any{}
	if decoded != nil {
		lastID, err := strconv.ParseInt(decoded.LastID, 10, 64)
		if err != nil {
			return nil, pagination.ErrInvalidCursor
		}
		query += ` WHERE id < $1`
		args = append(args, lastID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ChatEntry
	for rows.Next() {
		var entry domain.ChatEntry
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	next := pagination.CreateNextCursor(entries, limit,
		func(e domain.ChatEntry) string { return strconv.FormatInt(e.ID, 10) },
		func(e domain.ChatEntry) time.Time { return e.CreatedAt },
	)

	return &pagination.PageResult[domain.ChatEntry]{
		Items:   entries,
		Cursor:  next,
		HasMore: next != "",
	}, nil
}

func (r *ChatHistoryRepository) Clear(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_history`)
	return err
}
