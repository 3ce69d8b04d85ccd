package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySpendingRecord — агрегат расходов за день, ground truth для лимитов.
// Никогда не пересчитывается из лога транзакций на этапе решения:
// обновляется атомарным инкрементом при коммите (см. ledger_repo).
type DailySpendingRecord struct {
	UserID           string          `json:"user_id"`
	SpendDate        time.Time       `json:"spend_date"` // дата без времени, UTC
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TransactionCount int64           `json:"transaction_count"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BudgetStatus — снимок бюджета ДО применения предложенной суммы.
// Правила 1/2 движка тестируют spend+amount против лимита, но в статусе
// отдают pre-transaction значения — это документированная асимметрия,
// позволяющая честно сказать "вы уже потратили $X".
type BudgetStatus struct {
	TodaySpent     decimal.Decimal `json:"today_spent"`
	WeekSpent      decimal.Decimal `json:"week_spent"`
	DailyLimit     decimal.Decimal `json:"daily_limit"`
	WeeklyLimit    decimal.Decimal `json:"weekly_limit"`
	RemainingToday decimal.Decimal `json:"remaining_today"`
	RemainingWeek  decimal.Decimal `json:"remaining_week"`
}

// NewBudgetStatus собирает снимок и производные remaining-поля.
func NewBudgetStatus(policy PolicyConfig, todaySpent, weekSpent decimal.Decimal) BudgetStatus {
	return BudgetStatus{
		TodaySpent:     todaySpent,
		WeekSpent:      weekSpent,
		DailyLimit:     policy.DailySpendingLimit,
		WeeklyLimit:    policy.WeeklySpendingLimit,
		RemainingToday: policy.DailySpendingLimit.Sub(todaySpent),
		RemainingWeek:  policy.WeeklySpendingLimit.Sub(weekSpent),
	}
}

// UtilizationPercent = round(spent/limit*100). Нулевой или отрицательный лимит
// трактуем как 0% (бюджетное окно не сконфигурировано), деления на ноль нет.
func UtilizationPercent(spent, limit decimal.Decimal) int {
	if !limit.IsPositive() {
		return 0
	}
	pct := spent.Div(limit).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// DateOf обрезает момент времени до календарной даты в UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart — понедельник недели, в которую попадает t (locale-independent
// правило бюджетных окон: неделя всегда начинается с понедельника).
func WeekStart(t time.Time) time.Time {
	day := DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
