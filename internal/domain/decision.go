package domain

// Outcome — классификация предложенного перевода.
// State machine одного перевода: Proposed -> {Blocked | RequiresConfirmation |
// AutoApproved | Confirmed}. RequiresConfirmation не резюмируется движком:
// после явного подтверждения вызывающий повторяет полную оценку с confirmed=true,
// при этом бюджетные правила 1-2 перепроверяются всегда.
type Outcome string

const (
	OutcomeAutoApproved         Outcome = "auto_approved"
	OutcomeConfirmed            Outcome = "confirmed"
	OutcomeRequiresConfirmation Outcome = "requires_confirmation"
	OutcomeBlocked              Outcome = "blocked"
)

// Reason — машиночитаемая причина исхода.
type Reason string

const (
	ReasonDailyLimitExceeded  Reason = "daily_limit_exceeded"
	ReasonWeeklyLimitExceeded Reason = "weekly_limit_exceeded"
	ReasonNotTrusted          Reason = "not_trusted"
	ReasonWithinTrustedLimit  Reason = "within_trusted_limit"
	ReasonExceedsAutoApprove  Reason = "exceeds_auto_approve_limit"

	// ReasonPolicyUnverifiable — fail closed: политику или доверие прочитать
	// не удалось, неопределенность никогда не резолвится в авто-апрув.
	ReasonPolicyUnverifiable Reason = "policy_unverifiable"
)

// Decision — транзиентный результат движка, не персистится.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason"`

	// Человекочитаемое объяснение, отдельное от машинного Reason.
	Message string `json:"message"`

	Budget BudgetStatus `json:"budget"`
}

// Approved — разрешено ли вызывающему исполнять внешний перевод.
func (d Decision) Approved() bool {
	return d.Outcome == OutcomeAutoApproved || d.Outcome == OutcomeConfirmed
}
