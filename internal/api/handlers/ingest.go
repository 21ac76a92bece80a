package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platwave/unogpt/internal/api"
	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/ingest"
	"github.com/platwave/unogpt/internal/repository"
)

// IngestQueue enqueues and inspects ingestion jobs.
type IngestQueue interface {
	Enqueue(ctx context.Context, policy string) (*domain.IngestJob, error)
	GetByID(ctx context.Context, id string) (*domain.IngestJob, error)
	HasActive(ctx context.Context) (bool, error)
}

type IngestHandler struct {
	queue IngestQueue
}

func NewIngestHandler(queue IngestQueue) *IngestHandler {
	return &IngestHandler{queue: queue}
}

type IngestRequest struct {
	Policy string `json:"policy,omitempty"`
}

type IngestJobResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Policy  string `json:"policy"`
	Error   string `json:"error,omitempty"`
	Retries int    `json:"retries"`
}

func jobResponse(job *domain.IngestJob) IngestJobResponse {
	return IngestJobResponse{
		ID:      job.ID,
		Status:  string(job.Status),
		Policy:  job.Policy,
		Error:   job.Error,
		Retries: job.Retries,
	}
}

// Enqueue handles POST /ingest: queue one ingestion run. Only one run may be
// pending or processing at a time, which keeps rebuilds serialized.
func (h *IngestHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	req := IngestRequest{Policy: string(ingest.PolicyReuse)}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Policy == "" {
		req.Policy = string(ingest.PolicyReuse)
	}

	policy, err := ingest.ParsePolicy(req.Policy)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	active, err := h.queue.HasActive(ctx)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active {
		api.Error(w, http.StatusConflict, domain.ErrIngestBusy.Error())
		return
	}

	job, err := h.queue.Enqueue(ctx, string(policy))
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.Success(w, http.StatusAccepted, jobResponse(job))
}

// Get handles GET /ingest/{id}: report an ingestion job's status.
func (h *IngestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.queue.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrIngestJobNotFound) {
			api.Error(w, http.StatusNotFound, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.Success(w, http.StatusOK, jobResponse(job))
}
