package audit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event — строка журнала переводов и решений. Журнал — read-side для
// аналитики (top counterparties) и источник для ручной сверки; бюджетные
// решения его не читают никогда (ground truth лимитов — daily_spending).
type Event struct {
	ID             string `json:"id"`       // UUID события
	TraceID        string `json:"trace_id"` // Сквозной ID запроса
	UserID         string `json:"user_id"`
	CounterpartyID string `json:"counterparty_id"`

	Direction string          `json:"direction"` // "out" или "in"
	Amount    decimal.Decimal `json:"amount"`

	// Решение движка
	Outcome   string `json:"outcome"` // auto_approved / confirmed / requires_confirmation / blocked
	Reason    string `json:"reason"`
	Confirmed bool   `json:"confirmed"`

	// Результат исполнения
	Status        string    `json:"status"` // COMPLETED / FAILED / ...
	ExternalTxRef string    `json:"external_tx_ref,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// Статусы исполнения в журнале.
const (
	StatusEvaluated = "EVALUATED" // решение вынесено, исполнения не было
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"

	// StatusReconcile — внешний перевод прошел, запись расхода не удалась.
	// Деньги ушли, бюджет не списан: событие для обязательной ручной сверки.
	StatusReconcile = "RECONCILIATION_REQUIRED"
)
