package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/pagination"
)

type MockHistoryPager struct {
	mock.Mock
}

func (m *MockHistoryPager) ListPage(ctx context.Context, cursor string, limit int) (*pagination.PageResult[domain.ChatEntry], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[domain.ChatEntry]), args.Error(1)
}

func TestHistoryHandler_List(t *testing.T) {
	pager := new(MockHistoryPager)
	pager.On("ListPage", mock.Anything, "", 0).Return(&pagination.PageResult[domain.ChatEntry]{
		Items: []domain.ChatEntry{
			{ID: 2, Question: "¿Qué es una AFP?", Answer: "Administra fondos.", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
			{ID: 1, Question: "Hola", Answer: "Hola, ¿en qué puedo ayudar?", CreatedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		},
		Cursor:  "next-cursor",
		HasMore: true,
	}, nil)

	handler := NewHistoryHandler(pager)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data HistoryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Entries, 2)
	assert.Equal(t, int64(2), resp.Data.Entries[0].ID)
	assert.Equal(t, "¿Qué es una AFP?", resp.Data.Entries[0].Question)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.Data.Entries[0].CreatedAt)
	assert.Equal(t, "next-cursor", resp.Data.Cursor)
	assert.True(t, resp.Data.HasMore)
	pager.AssertExpectations(t)
}

func TestHistoryHandler_ListPassesCursorAndLimit(t *testing.T) {
	pager := new(MockHistoryPager)
	pager.On("ListPage", mock.Anything, "abc123", 5).Return(&pagination.PageResult[domain.ChatEntry]{
		Items: []domain.ChatEntry{},
	}, nil)

	handler := NewHistoryHandler(pager)

	req := httptest.NewRequest(http.MethodGet, "/history?cursor=abc123&limit=5", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	pager.AssertExpectations(t)
}

func TestHistoryHandler_ListInvalidLimit(t *testing.T) {
	handler := NewHistoryHandler(new(MockHistoryPager))

	req := httptest.NewRequest(http.MethodGet, "/history?limit=nope", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_ListInvalidCursor(t *testing.T) {
	pager := new(MockHistoryPager)
	pager.On("ListPage", mock.Anything, "!!!", 0).Return(nil, pagination.ErrInvalidCursor)

	handler := NewHistoryHandler(pager)

	req := httptest.NewRequest(http.MethodGet, "/history?cursor=!!!", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_ListError(t *testing.T) {
	pager := new(MockHistoryPager)
	pager.On("ListPage", mock.Anything, "", 0).Return(nil, errors.New("connection refused"))

	handler := NewHistoryHandler(pager)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
