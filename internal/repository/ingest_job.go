package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platwave/unogpt/internal/domain"
)

var ErrIngestJobNotFound = errors.New("ingest job not found")

type IngestJobRepository struct {
	db dbtx
}

func NewIngestJobRepository(pool *pgxpool.Pool) *IngestJobRepository {
	return &IngestJobRepository{db: pool}
}

func (r *IngestJobRepository) Enqueue(ctx context.Context, policy string) (*domain.IngestJob, error) {
	var job domain.IngestJob
	err := r.db.QueryRow(ctx,
		`INSERT INTO ingest_jobs (id, status, policy)
		 VALUES ($1, $2, $3)
		 RETURNING id, status, policy, error, retries, created_at, updated_at`,
		uuid.NewString(), domain.IngestJobStatusPending, policy,
	).Scan(&job.ID, &job.Status, &job.Policy, &job.Error, &job.Retries, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *IngestJobRepository) GetByID(ctx context.Context, id string) (*domain.IngestJob, error) {
	var job domain.IngestJob
	err := r.db.QueryRow(ctx,
		`SELECT id, status, policy, error, retries, created_at, updated_at
		 FROM ingest_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Status, &job.Policy, &job.Error, &job.Retries, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngestJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ClaimNext atomically claims the oldest pending job. Claiming one job at a
// time keeps ingestion runs, rebuilds included, strictly sequential across
// workers.
func (r *IngestJobRepository) ClaimNext(ctx context.Context) (*domain.IngestJob, error) {
	var job domain.IngestJob
	err := r.db.QueryRow(ctx,
		`WITH next AS (
			 SELECT id
			 FROM ingest_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT 1
		 )
		 UPDATE ingest_jobs
		 SET status = $2, error = '', updated_at = now()
		 FROM next
		 WHERE ingest_jobs.id = next.id
		 RETURNING ingest_jobs.id, ingest_jobs.status, ingest_jobs.policy, ingest_jobs.error,
		           ingest_jobs.retries, ingest_jobs.created_at, ingest_jobs.updated_at`,
		domain.IngestJobStatusPending, domain.IngestJobStatusProcessing,
	).Scan(&job.ID, &job.Status, &job.Policy, &job.Error, &job.Retries, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *IngestJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_jobs SET status = $1, error = $2, updated_at = now() WHERE id = $3`,
		status, errMsg, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestJobNotFound
	}
	return nil
}

func (r *IngestJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_jobs SET retries = retries + 1, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestJobNotFound
	}
	return nil
}

// HasActive reports whether any job is pending or processing. The API uses
// it to reject duplicate ingestion requests.
func (r *IngestJobRepository) HasActive(ctx context.Context) (bool, error) {
	var active bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			 SELECT 1 FROM ingest_jobs WHERE status IN ($1, $2)
		 )`,
		domain.IngestJobStatusPending, domain.IngestJobStatusProcessing,
	).Scan(&active)
	return active, err
}
