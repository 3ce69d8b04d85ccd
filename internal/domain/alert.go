package domain

import "time"

// AlertType классифицирует уведомления. Дедупликация — ответственность
// вызывающего, а не Alert Center: deposit_received дедупить нельзя,
// low_balance — обязательно (не более одного в календарный день).
type AlertType string

const (
	AlertLowBalance      AlertType = "low_balance"
	AlertDepositReceived AlertType = "deposit_received"
	AlertTransferBlocked AlertType = "transfer_blocked"
)

// Alert — пользовательское уведомление. Мутируется только флаг is_read,
// строки не удаляются в штатной работе.
type Alert struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	Type     AlertType      `json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsRead   bool           `json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}
