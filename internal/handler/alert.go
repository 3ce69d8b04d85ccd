package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

// AlertService Описываем, что нам нужно от сервиса
type AlertService interface {
	Unread(ctx context.Context, userID string) ([]domain.Alert, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type AlertHandler struct {
	service AlertService
}

func NewAlertHandler(s AlertService) *AlertHandler {
	return &AlertHandler{service: s}
}

// Unread — непрочитанные уведомления, новые первыми.
func (h *AlertHandler) Unread(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Unread(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

type MarkReadRequest struct {
	// Пустой список = пометить все непрочитанные.
	IDs []string `json:"ids,omitempty"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

// MarkRead помечает уведомления прочитанными.
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	marked, err := h.service.MarkRead(r.Context(), auth.UserID(r.Context()), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MarkReadResponse{Marked: marked})
}
