package postgres

/*
Файл alert_repo.go — персистентность пользовательских уведомлений.
Сам репозиторий НЕ дедуплицирует: Raise всегда вставляет строку.
Дедупликация low_balance (одна в календарный день) — решение Alert Center.
*/

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

func (r *WalletRepo) InsertAlert(ctx context.Context, a *domain.Alert) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal alert metadata: %w", err)
	}

	query := `
		INSERT INTO alerts (id, user_id, type, title, message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query, a.ID, a.UserID, a.Type, a.Title, a.Message, metadata).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert alert: %w", err)
	}
	return nil
}

// AlertExistsToday проверяет, создавалось ли уведомление данного типа
// сегодня (календарный день по UTC). Опора дедупликации low_balance.
// Граница дня вычисляется в UTC и приводится обратно к timestamptz,
// чтобы не зависеть от time zone сессии.
func (r *WalletRepo) AlertExistsToday(ctx context.Context, userID string, alertType domain.AlertType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND type = $2
			  AND created_at >= date_trunc('day', NOW() AT TIME ZONE 'utc') AT TIME ZONE 'utc'
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, alertType).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check alert existence: %w", err)
	}
	return exists, nil
}

// UnreadAlerts — непрочитанные уведомления, новые первыми.
func (r *WalletRepo) UnreadAlerts(ctx context.Context, userID string) ([]domain.Alert, error) {
	query := `
		SELECT id, user_id, type, title, message, metadata, is_read, created_at
		FROM alerts
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query unread alerts: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Alert, 0)
	for rows.Next() {
		var a domain.Alert
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Message, &metadata, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan alert: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, fmt.Errorf("postgres: corrupt metadata in alert %s: %w", a.ID, err)
			}
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// MarkAlertsRead помечает прочитанными все непрочитанные или только переданные id.
func (r *WalletRepo) MarkAlertsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	query := `UPDATE alerts SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	args := []interface{}{userID}
	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to mark alerts read: %w", err)
	}
	return ct.RowsAffected(), nil
}
