package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

// TrustService Описываем, что нам нужно от сервиса
type TrustService interface {
	Trust(ctx context.Context, userID, counterpartyID string, overrideLimit *decimal.Decimal) (domain.TrustEntry, error)
	Revoke(ctx context.Context, userID, counterpartyID string) error
	List(ctx context.Context, userID string) ([]domain.TrustEntry, error)
}

type TrustHandler struct {
	service TrustService
}

func NewTrustHandler(s TrustService) *TrustHandler {
	return &TrustHandler{service: s}
}

type TrustRequest struct {
	// Опциональный персональный лимит авто-апрува, строка-десятичное.
	AutoApproveLimitOverride *string `json:"auto_approve_limit_override,omitempty"`
}

// Put добавляет контрагента в доверенные (идемпотентно).
func (h *TrustHandler) Put(w http.ResponseWriter, r *http.Request) {
	counterpartyID := chi.URLParam(r, "counterpartyID")

	var req TrustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var override *decimal.Decimal
	if req.AutoApproveLimitOverride != nil {
		v, err := decimal.NewFromString(*req.AutoApproveLimitOverride)
		if err != nil {
			writeError(w, domain.ErrInvalidAmount)
			return
		}
		override = &v
	}

	entry, err := h.service.Trust(r.Context(), auth.UserID(r.Context()), counterpartyID, override)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Delete отзывает доверие (идемпотентно, всегда 204).
func (h *TrustHandler) Delete(w http.ResponseWriter, r *http.Request) {
	counterpartyID := chi.URLParam(r, "counterpartyID")

	if err := h.service.Revoke(r.Context(), auth.UserID(r.Context()), counterpartyID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List — все доверенные контрагенты пользователя.
func (h *TrustHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
