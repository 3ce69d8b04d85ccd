package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

const defaultSummaryWindowDays = 7

// AnalyticsService Описываем, что нам нужно от сервиса
type AnalyticsService interface {
	Summarize(ctx context.Context, userID string, windowDays int) (domain.Summary, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(s AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// Summary — сводка расходов за трейлинг-окно (?window_days=7 по умолчанию).
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	windowDays := defaultSummaryWindowDays
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			windowDays = parsed // Сервис сам клампит в допустимый диапазон
		}
	}

	summary, err := h.service.Summarize(r.Context(), auth.UserID(r.Context()), windowDays)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
