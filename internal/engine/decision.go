package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// Inputs — всё, что нужно для классификации предложенного перевода.
// Снимок собирает ядро (core.go), сама функция решения чистая:
// ни I/O, ни мутаций, ни блокировок.
type Inputs struct {
	Policy     domain.PolicyConfig
	Trust      *domain.TrustEntry // nil == контрагент не доверен
	TodaySpend decimal.Decimal
	WeekSpend  decimal.Decimal
	Amount     decimal.Decimal
	Confirmed  bool
}

// Evaluate классифицирует перевод. Порядок правил фиксирован, первое
// сработавшее выигрывает (short-circuit):
//
//  1. todaySpend + amount > dailyLimit  -> Blocked (daily_limit_exceeded)
//  2. weekSpend + amount > weeklyLimit  -> Blocked (weekly_limit_exceeded)
//  3. нет TrustEntry                    -> RequiresConfirmation (not_trusted)
//  4. amount <= override ?? autoApprove -> AutoApproved (within_trusted_limit)
//  5. иначе                             -> RequiresConfirmation (exceeds_auto_approve_limit)
//
// Бюджетные правила 1-2 доминируют над доверием: подтверждение пользователя
// их не обходит. confirmed=true апгрейдит только доверительные исходы 3/5.
// BudgetStatus в решении всегда pre-transaction: правила тестируют
// spend+amount, но в статусе отдаем то, что уже потрачено.
func Evaluate(in Inputs) domain.Decision {
	status := domain.NewBudgetStatus(in.Policy, in.TodaySpend, in.WeekSpend)

	// Нулевой/отрицательный лимит — "бюджет исчерпан", не ошибка движка
	if in.TodaySpend.Add(in.Amount).GreaterThan(in.Policy.DailySpendingLimit) {
		return domain.Decision{
			Outcome: domain.OutcomeBlocked,
			Reason:  domain.ReasonDailyLimitExceeded,
			Message: fmt.Sprintf("daily limit exceeded: spent %s of %s today, %s remaining",
				status.TodaySpent, status.DailyLimit, status.RemainingToday),
			Budget: status,
		}
	}

	if in.WeekSpend.Add(in.Amount).GreaterThan(in.Policy.WeeklySpendingLimit) {
		return domain.Decision{
			Outcome: domain.OutcomeBlocked,
			Reason:  domain.ReasonWeeklyLimitExceeded,
			Message: fmt.Sprintf("weekly limit exceeded: spent %s of %s this week, %s remaining",
				status.WeekSpent, status.WeeklyLimit, status.RemainingWeek),
			Budget: status,
		}
	}

	if in.Trust == nil {
		return domain.Decision{
			Outcome: confirmable(in.Confirmed),
			Reason:  domain.ReasonNotTrusted,
			Message: "counterparty is not in your trusted list, confirmation required",
			Budget:  status,
		}
	}

	if effective := in.Trust.EffectiveLimit(in.Policy); in.Amount.LessThanOrEqual(effective) {
		outcome := domain.OutcomeAutoApproved
		if in.Confirmed {
			// Пользователь уже подтвердил — фиксируем это в исходе
			outcome = domain.OutcomeConfirmed
		}
		return domain.Decision{
			Outcome: outcome,
			Reason:  domain.ReasonWithinTrustedLimit,
			Message: fmt.Sprintf("amount %s is within the trusted limit %s", in.Amount, effective),
			Budget:  status,
		}
	}

	return domain.Decision{
		Outcome: confirmable(in.Confirmed),
		Reason:  domain.ReasonExceedsAutoApprove,
		Message: "counterparty is trusted but the amount exceeds the auto-approve limit, confirmation required",
		Budget:  status,
	}
}

// confirmable: доверительные исходы резолвятся явным подтверждением,
// бюджетные (Blocked) и fail-closed — никогда.
func confirmable(confirmed bool) domain.Outcome {
	if confirmed {
		return domain.OutcomeConfirmed
	}
	return domain.OutcomeRequiresConfirmation
}

// FailClosed — решение при невозможности прочитать политику/доверие/леджер.
// Неопределенность никогда не резолвится в авто-апрув; подтверждение
// такой исход тоже не апгрейдит (бюджет непроверяем).
func FailClosed() domain.Decision {
	return domain.Decision{
		Outcome: domain.OutcomeRequiresConfirmation,
		Reason:  domain.ReasonPolicyUnverifiable,
		Message: "could not verify spending policies, please confirm manually",
	}
}
