package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/platwave/unogpt/internal/domain"
)

const (
	// MaxRetries is the maximum number of attempts for a failed ingest job
	MaxRetries = 3
)

// IngestJobQueue defines the interface for ingest job persistence
type IngestJobQueue interface {
	// ClaimNext claims the oldest pending job, or returns nil when none remain
	ClaimNext(ctx context.Context) (*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// PipelineRunner runs one full ingestion under the given collection policy
type PipelineRunner interface {
	Run(ctx context.Context, policy string) (int, error)
}

// IngestWorker processes queued ingestion jobs. Jobs are claimed and run one
// at a time, so a rebuild never interleaves with another writer.
type IngestWorker struct {
	queue  IngestJobQueue
	runner PipelineRunner
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(queue IngestJobQueue, runner PipelineRunner) *IngestWorker {
	return &IngestWorker{
		queue:  queue,
		runner: runner,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	for {
		job, err := w.queue.ClaimNext(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim pending job: %w", err)
		}
		if job == nil {
			return nil
		}

		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("Processing ingest job %s with policy %s", job.ID, job.Policy)

	written, err := w.runner.Run(ctx, job.Policy)
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed: %d records written", job.ID, written)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.queue.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
