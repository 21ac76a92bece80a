package domain

import "time"

// IngestJobStatus tracks an ingestion job through its lifecycle.
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob is a queued ingestion run. Jobs are claimed one at a time, which
// serializes rebuilds against the target collection.
type IngestJob struct {
	ID        string
	Status    IngestJobStatus
	Policy    string
	Error     string
	Retries   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatEntry is one persisted question/answer interaction.
type ChatEntry struct {
	ID        int64
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Turn returns the conversation turn view of the entry.
func (e ChatEntry) Turn() Turn {
	return Turn{Question: e.Question, Answer: e.Answer}
}
