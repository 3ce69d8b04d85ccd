package domain

import "github.com/shopspring/decimal"

// CounterpartySpend — агрегат по одному контрагенту за окно.
type CounterpartySpend struct {
	CounterpartyID string          `json:"counterparty_id"`
	Total          decimal.Decimal `json:"total"`
	Count          int64           `json:"count"`

	// Целочисленный процент от общего расхода окна; 0 при нулевом total.
	PercentageOfTotal int `json:"percentage_of_total_spend"`
}

// Summary — сводка расходов за трейлинг-окно (read-side, ничего не мутирует).
type Summary struct {
	WindowDays       int                 `json:"window_days"`
	TotalSpent       decimal.Decimal     `json:"total_spent"`
	TransactionCount int64               `json:"transaction_count"`
	AveragePerTx     decimal.Decimal     `json:"average_per_transaction"`
	TopCounterparties []CounterpartySpend `json:"top_counterparties"`

	Budget           BudgetStatus `json:"budget"`
	DailyPercentUsed int          `json:"daily_percent_used"`
	WeekPercentUsed  int          `json:"week_percent_used"`
}
