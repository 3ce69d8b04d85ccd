package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError отображает таксономию доменных ошибок на HTTP-статусы.
// Текст наружу — только для известных видов; внутренние детали остаются в логах.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrStorageUnavailable):
		http.Error(w, "storage unavailable, try again later", http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
