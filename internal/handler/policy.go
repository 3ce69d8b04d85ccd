package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

// PolicyService Описываем, что нам нужно от сервиса
type PolicyService interface {
	Get(ctx context.Context, userID string) (domain.PolicyConfig, error)
	Update(ctx context.Context, userID string, u domain.PolicyUpdate) (domain.PolicyConfig, error)
}

type PolicyHandler struct {
	service PolicyService
}

func NewPolicyHandler(s PolicyService) *PolicyHandler {
	return &PolicyHandler{service: s}
}

// Get — действующие лимиты пользователя (материализуются при первом обращении).
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// Update — частичное обновление лимитов: отсутствующие поля не трогаются.
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u domain.PolicyUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg, err := h.service.Update(r.Context(), auth.UserID(r.Context()), u)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
