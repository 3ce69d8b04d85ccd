package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

const topCounterpartiesLimit = 5

// AnalyticsRepository описывает требования аналитики к хранилищу.
type AnalyticsRepository interface {
	GetDailyRecords(ctx context.Context, userID string, from, to time.Time) ([]domain.DailySpendingRecord, error)
	SumSpendRange(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
	TopCounterparties(ctx context.Context, userID string, from, to time.Time, limit int) ([]domain.CounterpartySpend, error)
}

// AnalyticsPolicySource — политика нужна сводке ради бюджетного блока.
type AnalyticsPolicySource interface {
	Get(ctx context.Context, userID string) (domain.PolicyConfig, error)
}

// Analytics — read-side сводки расходов. Ничего не мутирует; все числа
// производные от дневных агрегатов и журнала переводов.
type Analytics struct {
	repo          AnalyticsRepository
	policies      AnalyticsPolicySource
	maxWindowDays int
	timeout       time.Duration
	logger        *zap.Logger
}

func NewAnalytics(repo AnalyticsRepository, policies AnalyticsPolicySource, maxWindowDays int, storageTimeout time.Duration, logger *zap.Logger) *Analytics {
	return &Analytics{
		repo:          repo,
		policies:      policies,
		maxWindowDays: maxWindowDays,
		timeout:       storageTimeout,
		logger:        logger.Named("analytics"),
	}
}

// Summarize собирает сводку за трейлинг-окно windowDays, включая сегодня.
// Окно клампится в [1, maxWindowDays] молча: кривой параметр — не повод
// отдавать 4xx на read-only дашборде.
func (s *Analytics) Summarize(ctx context.Context, userID string, windowDays int) (domain.Summary, error) {
	if windowDays < 1 {
		windowDays = 1
	}
	if windowDays > s.maxWindowDays {
		windowDays = s.maxWindowDays
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	today := domain.DateOf(now)
	from := today.AddDate(0, 0, -(windowDays - 1))

	records, err := s.repo.GetDailyRecords(tCtx, userID, from, today)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	totalSpent := decimal.Zero
	var txCount int64
	todaySpent := decimal.Zero
	for _, rec := range records {
		totalSpent = totalSpent.Add(rec.TotalSpent)
		txCount += rec.TransactionCount
		if rec.SpendDate.Equal(today) {
			todaySpent = rec.TotalSpent
		}
	}

	avgPerTx := decimal.Zero
	if txCount > 0 {
		avgPerTx = totalSpent.Div(decimal.NewFromInt(txCount)).Round(2)
	}

	// Журнал переводов фильтруется по created_at с эксклюзивной верхней
	// границей, поэтому сегодняшние переводы покрывает завтрашняя полночь.
	top, err := s.repo.TopCounterparties(tCtx, userID, from, today.AddDate(0, 0, 1), topCounterpartiesLimit)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	for i := range top {
		top[i].PercentageOfTotal = domain.UtilizationPercent(top[i].Total, totalSpent)
	}

	weekSpent, err := s.repo.SumSpendRange(tCtx, userID, domain.WeekStart(now), today)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	policyCfg, err := s.policies.Get(ctx, userID)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	return domain.Summary{
		WindowDays:        windowDays,
		TotalSpent:        totalSpent,
		TransactionCount:  txCount,
		AveragePerTx:      avgPerTx,
		TopCounterparties: top,
		Budget:            domain.NewBudgetStatus(policyCfg, todaySpent, weekSpent),
		DailyPercentUsed:  domain.UtilizationPercent(todaySpent, policyCfg.DailySpendingLimit),
		WeekPercentUsed:   domain.UtilizationPercent(weekSpent, policyCfg.WeeklySpendingLimit),
	}, nil
}
