package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrustEntry — "этот контрагент доверен для этого пользователя".
// Отсутствие записи означает "не доверен", а НЕ "доверен с нулевым лимитом".
type TrustEntry struct {
	UserID         string `json:"user_id"`
	CounterpartyID string `json:"counterparty_id"`

	// Персональный потолок авто-апрува для контрагента.
	// nil — действует общий PolicyConfig.AutoApproveLimit.
	AutoApproveLimitOverride *decimal.Decimal `json:"auto_approve_limit_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveLimit вычисляет действующий потолок авто-апрува:
// override контрагента, иначе общий лимит политики.
func (t *TrustEntry) EffectiveLimit(policy PolicyConfig) decimal.Decimal {
	if t != nil && t.AutoApproveLimitOverride != nil {
		return *t.AutoApproveLimitOverride
	}
	return policy.AutoApproveLimit
}
