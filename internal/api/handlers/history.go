package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/platwave/unogpt/internal/api"
	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/pagination"
)

// HistoryPager lists persisted chat entries with cursor pagination.
type HistoryPager interface {
	ListPage(ctx context.Context, cursor string, limit int) (*pagination.PageResult[domain.ChatEntry], error)
}

type HistoryHandler struct {
	pager HistoryPager
}

func NewHistoryHandler(pager HistoryPager) *HistoryHandler {
	return &HistoryHandler{pager: pager}
}

type HistoryEntryResponse struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

// List handles GET /history: page through past interactions, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.pager.ListPage(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := make([]HistoryEntryResponse, len(page.Items))
	for i, entry := range page.Items {
		entries[i] = HistoryEntryResponse{
			ID:        entry.ID,
			Question:  entry.Question,
			Answer:    entry.Answer,
			CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	api.Success(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}
