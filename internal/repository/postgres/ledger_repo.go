package postgres

/*
Файл ledger_repo.go — бюджетный леджер, единственное место в системе
с жестким требованием атомарности. Дневной агрегат инкрементируется
одним условным upsert-ом с серверной арифметикой: никаких
read-modify-write в приложении, конкурентные переводы одного
пользователя за один день не теряют обновлений.
*/

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// IncrementDailySpend атомарно прибавляет amount к (user_id, date),
// создавая запись при отсутствии. Вся арифметика на стороне сервера БД.
func (r *WalletRepo) IncrementDailySpend(ctx context.Context, userID string, date time.Time, amount decimal.Decimal) error {
	query := `
		INSERT INTO daily_spending (user_id, spend_date, total_spent, transaction_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, spend_date)
		DO UPDATE SET total_spent       = daily_spending.total_spent + EXCLUDED.total_spent,
		              transaction_count = daily_spending.transaction_count + 1,
		              updated_at        = NOW()`

	if _, err := r.pool.Exec(ctx, query, userID, domain.DateOf(date), amount); err != nil {
		return fmt.Errorf("postgres: failed to increment daily spend: %w", err)
	}
	return nil
}

// GetDailySpend возвращает total_spent за дату, 0 при отсутствии записи.
func (r *WalletRepo) GetDailySpend(ctx context.Context, userID string, date time.Time) (decimal.Decimal, error) {
	query := `SELECT total_spent FROM daily_spending WHERE user_id = $1 AND spend_date = $2`

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, userID, domain.DateOf(date)).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("postgres: failed to fetch daily spend: %w", err)
	}
	return total, nil
}

// SumSpendRange суммирует total_spent за [from, to] включительно.
// Недельный расход — производная величина, отдельно не хранится.
func (r *WalletRepo) SumSpendRange(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_spent), 0)
		FROM daily_spending
		WHERE user_id = $1 AND spend_date BETWEEN $2 AND $3`

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, userID, domain.DateOf(from), domain.DateOf(to)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("postgres: failed to sum spend range: %w", err)
	}
	return total, nil
}

// GetDailyRecords возвращает агрегаты окна для аналитики, новые первыми.
func (r *WalletRepo) GetDailyRecords(ctx context.Context, userID string, from, to time.Time) ([]domain.DailySpendingRecord, error) {
	query := `
		SELECT user_id, spend_date, total_spent, transaction_count, updated_at
		FROM daily_spending
		WHERE user_id = $1 AND spend_date BETWEEN $2 AND $3
		ORDER BY spend_date DESC`

	rows, err := r.pool.Query(ctx, query, userID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query daily records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.DailySpendingRecord, 0)
	for rows.Next() {
		var rec domain.DailySpendingRecord
		if err := rows.Scan(&rec.UserID, &rec.SpendDate, &rec.TotalSpent, &rec.TransactionCount, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan daily record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return records, nil
}
