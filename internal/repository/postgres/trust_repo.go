package postgres

/*
Файл trust_repo.go — реестр доверенных контрагентов.
Отсутствие записи — ожидаемый, частый исход, поэтому Lookup возвращает
(nil, nil), а не ошибку.
*/

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// UpsertTrust добавляет контрагента в доверенные или обновляет его override-лимит.
// Idempotent-by-replace: повторное добавление не ошибка, override заменяется.
func (r *WalletRepo) UpsertTrust(ctx context.Context, userID, counterpartyID string, overrideLimit *decimal.Decimal) (domain.TrustEntry, error) {
	query := `
		INSERT INTO trusted_counterparties (user_id, counterparty_id, auto_approve_limit_override)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, counterparty_id)
		DO UPDATE SET auto_approve_limit_override = EXCLUDED.auto_approve_limit_override,
		              updated_at = NOW()
		RETURNING user_id, counterparty_id, auto_approve_limit_override, created_at, updated_at`

	var t domain.TrustEntry
	err := r.pool.QueryRow(ctx, query, userID, counterpartyID, overrideLimit).Scan(
		&t.UserID, &t.CounterpartyID, &t.AutoApproveLimitOverride, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.TrustEntry{}, fmt.Errorf("postgres: failed to upsert trust entry: %w", err)
	}
	return t, nil
}

// DeleteTrust удаляет запись. Успешен и при отсутствии записи (idempotent delete).
func (r *WalletRepo) DeleteTrust(ctx context.Context, userID, counterpartyID string) error {
	query := `DELETE FROM trusted_counterparties WHERE user_id = $1 AND counterparty_id = $2`
	if _, err := r.pool.Exec(ctx, query, userID, counterpartyID); err != nil {
		return fmt.Errorf("postgres: failed to delete trust entry: %w", err)
	}
	return nil
}

// GetTrust возвращает nil без ошибки, когда контрагент не доверен.
func (r *WalletRepo) GetTrust(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error) {
	query := `
		SELECT user_id, counterparty_id, auto_approve_limit_override, created_at, updated_at
		FROM trusted_counterparties
		WHERE user_id = $1 AND counterparty_id = $2`

	var t domain.TrustEntry
	err := r.pool.QueryRow(ctx, query, userID, counterpartyID).Scan(
		&t.UserID, &t.CounterpartyID, &t.AutoApproveLimitOverride, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // не доверен — значение, а не ошибка
		}
		return nil, fmt.Errorf("postgres: failed to fetch trust entry: %w", err)
	}
	return &t, nil
}

// ListTrust — порядок по counterparty_id: стабильность нужна только для отображения.
func (r *WalletRepo) ListTrust(ctx context.Context, userID string) ([]domain.TrustEntry, error) {
	query := `
		SELECT user_id, counterparty_id, auto_approve_limit_override, created_at, updated_at
		FROM trusted_counterparties
		WHERE user_id = $1
		ORDER BY counterparty_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list trust entries: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]domain.TrustEntry, 0)
	for rows.Next() {
		var t domain.TrustEntry
		if err := rows.Scan(&t.UserID, &t.CounterpartyID, &t.AutoApproveLimitOverride, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan trust entry: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}
