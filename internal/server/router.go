package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platwave/unogpt/internal/api"
	"github.com/platwave/unogpt/internal/api/handlers"
	"github.com/platwave/unogpt/internal/api/middleware"
)

type RouterConfig struct {
	AnswerHandler  *handlers.AnswerHandler
	IngestHandler  *handlers.IngestHandler
	HistoryHandler *handlers.HistoryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/answer", cfg.AnswerHandler.Answer)
	r.Post("/answer/default", cfg.AnswerHandler.AnswerDefault)

	r.Get("/history", cfg.HistoryHandler.List)

	r.Route("/ingest", func(r chi.Router) {
		r.Post("/", cfg.IngestHandler.Enqueue)
		r.Get("/{id}", cfg.IngestHandler.Get)
	})

	return r
}
