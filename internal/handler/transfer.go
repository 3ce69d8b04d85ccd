package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xela07ax/payguard-prototype/internal/connectors"
	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

// TransferCore Описываем, что нам нужно от ядра
type TransferCore interface {
	EvaluateTransfer(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, confirmed bool) (domain.Decision, error)
	ExecuteTransfer(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, confirmed bool) (domain.Decision, *connectors.ExecutionResult, error)
	RecordCompletedSpend(ctx context.Context, userID string, amount decimal.Decimal) error
	RecordDeposit(ctx context.Context, userID, source string, amount decimal.Decimal) error
	GetBudgetStatus(ctx context.Context, userID string) (domain.BudgetStatus, error)
}

type TransferHandler struct {
	core TransferCore
}

func NewTransferHandler(core TransferCore) *TransferHandler {
	return &TransferHandler{core: core}
}

type TransferRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	Amount         string `json:"amount"`

	// Явное подтверждение пользователя (вторая фаза после requires_confirmation)
	Confirmed bool `json:"confirmed"`
}

// parse валидирует тело: сумма приходит строкой, чтобы не терять центы
// на float-конверсиях JSON.
func (req *TransferRequest) parse() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

// Evaluate — dry-run решения без исполнения перевода.
func (h *TransferHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	amount, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}

	decision, err := h.core.EvaluateTransfer(r.Context(), auth.UserID(r.Context()), req.CounterpartyID, amount, req.Confirmed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

type ExecuteResponse struct {
	Decision  domain.Decision             `json:"decision"`
	Execution *connectors.ExecutionResult `json:"execution,omitempty"`
}

// Execute — полный проход: решение, внешний перевод, коммит расхода.
// Неодобренное решение — это 200 с decision в теле, а не ошибка HTTP:
// клиент показывает его пользователю и решает, подтверждать ли.
func (h *TransferHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if !auth.HasScope(r.Context(), "transfers.execute") {
		http.Error(w, "missing scope: transfers.execute", http.StatusForbidden)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	amount, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}

	decision, res, err := h.core.ExecuteTransfer(r.Context(), auth.UserID(r.Context()), req.CounterpartyID, amount, req.Confirmed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{Decision: decision, Execution: res})
}

type RecordSpendRequest struct {
	Amount string `json:"amount"`
}

// RecordSpend коммитит расход перевода, исполненного внешним каналом.
func (h *TransferHandler) RecordSpend(w http.ResponseWriter, r *http.Request) {
	var req RecordSpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	if err := h.core.RecordCompletedSpend(r.Context(), auth.UserID(r.Context()), amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type RecordDepositRequest struct {
	Amount string `json:"amount"`
	Source string `json:"source"`
}

// RecordDeposit фиксирует зачисление: журнал + уведомление, бюджет не трогается.
func (h *TransferHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	var req RecordDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	if err := h.core.RecordDeposit(r.Context(), auth.UserID(r.Context()), req.Source, amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BudgetStatus — снимок бюджета пользователя.
func (h *TransferHandler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.core.GetBudgetStatus(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
