package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/platwave/unogpt/internal/api"
	"github.com/platwave/unogpt/internal/bot"
	"github.com/platwave/unogpt/internal/domain"
)

// AnswerEngine produces a context-grounded answer for a question.
type AnswerEngine interface {
	Answer(ctx context.Context, question string, history []domain.Turn) (bot.Reply, error)
}

// DefaultAnswerEngine produces a context-free answer.
type DefaultAnswerEngine interface {
	Answer(ctx context.Context, question string) (string, error)
}

// HistoryStore persists and replays conversation turns.
type HistoryStore interface {
	RecentTurns(ctx context.Context, limit int) ([]domain.Turn, error)
	Create(ctx context.Context, question, answer string) (*domain.ChatEntry, error)
}

const defaultHistoryLimit = 20

type AnswerHandler struct {
	engine        AnswerEngine
	defaultEngine DefaultAnswerEngine
	history       HistoryStore
	historyLimit  int
}

func NewAnswerHandler(engine AnswerEngine, defaultEngine DefaultAnswerEngine, history HistoryStore) *AnswerHandler {
	return &AnswerHandler{
		engine:        engine,
		defaultEngine: defaultEngine,
		history:       history,
		historyLimit:  defaultHistoryLimit,
	}
}

type AnswerRequest struct {
	Question string `json:"question"`
}

type AnswerResponse struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
}

type DefaultAnswerResponse struct {
	Answer string `json:"answer"`
}

// Answer handles POST /answer: retrieval-augmented answering over the
// persisted conversation history.
func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question cannot be empty")
		return
	}

	ctx := r.Context()

	// A history read failure degrades to a fresh conversation.
	history, err := h.history.RecentTurns(ctx, h.historyLimit)
	if err != nil {
		log.Printf("answer: failed to load history: %v", err)
		history = nil
	}

	reply, err := h.engine.Answer(ctx, req.Question, history)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		// A missing collection means the index was never built.
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := h.history.Create(ctx, req.Question, reply.Answer); err != nil {
		log.Printf("answer: failed to persist turn: %v", err)
	}

	api.Success(w, http.StatusOK, AnswerResponse{
		Answer:  reply.Answer,
		Context: reply.Context,
	})
}

// AnswerDefault handles POST /answer/default: the bare question goes to the
// model with no retrieval and no history.
func (h *AnswerHandler) AnswerDefault(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question cannot be empty")
		return
	}

	answer, err := h.defaultEngine.Answer(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DefaultAnswerResponse{Answer: answer})
}
