package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// LedgerRepository описывает требования сервиса к бюджетному леджеру.
type LedgerRepository interface {
	IncrementDailySpend(ctx context.Context, userID string, date time.Time, amount decimal.Decimal) error
	GetDailySpend(ctx context.Context, userID string, date time.Time) (decimal.Decimal, error)
	SumSpendRange(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
}

// BudgetLedger — сервис учета расходов. Каждый вызов к хранилищу ограничен
// StorageTimeout: движок над нами обязан получить ответ или ошибку быстро,
// зависший Postgres превращается в ErrStorageUnavailable, а не в зависший
// запрос.
type BudgetLedger struct {
	repo    LedgerRepository
	timeout time.Duration
	logger  *zap.Logger
}

func NewBudgetLedger(repo LedgerRepository, storageTimeout time.Duration, logger *zap.Logger) *BudgetLedger {
	return &BudgetLedger{
		repo:    repo,
		timeout: storageTimeout,
		logger:  logger.Named("budget-ledger"),
	}
}

// RecordSpend коммитит расход в дневной агрегат текущей даты (UTC).
// Сумма проверяется до любого I/O: отрицательные и нулевые значения
// в леджер не попадают никогда.
func (s *BudgetLedger) RecordSpend(ctx context.Context, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidAmount, amount)
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.IncrementDailySpend(tCtx, userID, time.Now().UTC(), amount); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// TodaySpend — расход за текущую дату (UTC), 0 если записей нет.
func (s *BudgetLedger) TodaySpend(ctx context.Context, userID string) (decimal.Decimal, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.repo.GetDailySpend(tCtx, userID, time.Now().UTC())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return total, nil
}

// WeekSpend — сумма расходов с понедельника текущей недели по сегодня.
// Считается из дневных агрегатов при каждом вызове, отдельного
// недельного счетчика нет.
func (s *BudgetLedger) WeekSpend(ctx context.Context, userID string) (decimal.Decimal, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	total, err := s.repo.SumSpendRange(tCtx, userID, domain.WeekStart(now), now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return total, nil
}
