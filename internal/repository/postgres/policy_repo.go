package postgres

/*
Файл policy_repo.go отвечает за хранение политик расходов (PolicyConfig).
Политика материализуется лениво: первое обращение любого пользователя
создает строку с дефолтами, поэтому "policy not found" наружу не выходит.
*/

import (
	"context"
	"fmt"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

const policyColumns = `user_id, auto_approve_limit, daily_spending_limit, weekly_spending_limit,
       low_balance_alert_threshold, auto_save_percentage, created_at, updated_at`

// GetOrCreatePolicy возвращает политику пользователя, создавая строку
// с дефолтами при первом обращении. Upsert с no-op DO UPDATE нужен,
// чтобы RETURNING сработал и для уже существующей строки — один проход
// вместо SELECT + INSERT (исключает гонку двух первых обращений).
func (r *WalletRepo) GetOrCreatePolicy(ctx context.Context, userID string) (domain.PolicyConfig, error) {
	def := domain.DefaultPolicyConfig(userID)

	query := `
		INSERT INTO spending_policies (
			user_id, auto_approve_limit, daily_spending_limit, weekly_spending_limit,
			low_balance_alert_threshold, auto_save_percentage
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + policyColumns

	var p domain.PolicyConfig
	err := r.pool.QueryRow(ctx, query,
		userID, def.AutoApproveLimit, def.DailySpendingLimit, def.WeeklySpendingLimit,
		def.LowBalanceAlertThreshold, def.AutoSavePercentage,
	).Scan(
		&p.UserID, &p.AutoApproveLimit, &p.DailySpendingLimit, &p.WeeklySpendingLimit,
		&p.LowBalanceAlertThreshold, &p.AutoSavePercentage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("postgres: failed to get or create policy: %w", err)
	}
	return p, nil
}

// UpdatePolicy применяет частичное обновление через COALESCE:
// nil-параметры оставляют колонку как есть.
func (r *WalletRepo) UpdatePolicy(ctx context.Context, userID string, u domain.PolicyUpdate) (domain.PolicyConfig, error) {
	// Строка гарантированно существует: сервис зовет GetOrCreatePolicy раньше.
	query := `
		UPDATE spending_policies SET
			auto_approve_limit          = COALESCE($2, auto_approve_limit),
			daily_spending_limit        = COALESCE($3, daily_spending_limit),
			weekly_spending_limit       = COALESCE($4, weekly_spending_limit),
			low_balance_alert_threshold = COALESCE($5, low_balance_alert_threshold),
			auto_save_percentage        = COALESCE($6, auto_save_percentage),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + policyColumns

	var p domain.PolicyConfig
	err := r.pool.QueryRow(ctx, query,
		userID, u.AutoApproveLimit, u.DailySpendingLimit, u.WeeklySpendingLimit,
		u.LowBalanceAlertThreshold, u.AutoSavePercentage,
	).Scan(
		&p.UserID, &p.AutoApproveLimit, &p.DailySpendingLimit, &p.WeeklySpendingLimit,
		&p.LowBalanceAlertThreshold, &p.AutoSavePercentage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("postgres: failed to update policy: %w", err)
	}
	return p, nil
}
