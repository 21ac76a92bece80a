package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/platwave/unogpt/internal/domain"
)

const uniqueViolation = "23505"

// PgStore is a Store backed by Postgres with the pgvector extension.
// Collections are rows of the collections table; records reference their
// collection and cascade on delete.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PgStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO collections (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrCollectionAlreadyExists
		}
		return nil, err
	}
	return &pgCollection{pool: s.pool, id: id, name: name}, nil
}

func (s *PgStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM collections WHERE name = $1`,
		name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, err
	}
	return &pgCollection{pool: s.pool, id: id, name: name}, nil
}

func (s *PgStore) DeleteCollection(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM collections WHERE name = $1`, name)
	return err
}

type pgCollection struct {
	pool *pgxpool.Pool
	id   string
	name string
}

func (c *pgCollection) Name() string { return c.name }

// Upsert writes all records in one transaction so a batch either lands
// completely or not at all.
func (c *pgCollection) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if rec.Text == "" {
			return domain.ErrEmptyChunk
		}
		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO records (id, collection_id, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding`,
			rec.ID, c.id, rec.Text, metadata, pgvector.NewVector(rec.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (c *pgCollection) Query(ctx context.Context, embedding []float32, topK int) ([]domain.QueryMatch, error) {
	if len(embedding) == 0 {
		return nil, domain.ErrEmptyEmbedding
	}
	if topK <= 0 {
		topK = 8
	}

	vec := pgvector.NewVector(embedding)
	rows, err := c.pool.Query(ctx,
		`SELECT content, metadata, embedding <=> $2 AS distance
		 FROM records
		 WHERE collection_id = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		c.id, vec, topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.QueryMatch
	for rows.Next() {
		var m domain.QueryMatch
		var metadata []byte
		if err := rows.Scan(&m.Text, &metadata, &m.Distance); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (c *pgCollection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE collection_id = $1`,
		c.id,
	).Scan(&count)
	return count, err
}
