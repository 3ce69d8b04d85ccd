package postgres

/*
Файл transfer_repo.go — журнал переводов (transfer_events).
Пишется пачками из audit.Trail, читается аналитикой (top counterparties)
и процедурами сверки. В принятии решений не участвует.
*/

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/payguard-prototype/internal/audit"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

func (r *WalletRepo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице transfer_events
	numFields := 14
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10, p+11, p+12, p+13, p+14)

		vals = append(vals,
			e.ID, e.TraceID, e.UserID, e.CounterpartyID, e.Direction, e.Amount,
			e.Outcome, e.Reason, e.Confirmed, e.Status, e.ExternalTxRef, e.DurationMs, e.Error, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO transfer_events (id, trace_id, user_id, counterparty_id, direction, amount, outcome, reason, confirmed, status, external_tx_ref, duration_ms, error, created_at) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.pool.Exec(ctx, query, vals...)
	return err
}

// TopCounterparties — ранжирование получателей по сумме исходящих
// завершенных переводов за окно. Проценты считает сервис аналитики.
func (r *WalletRepo) TopCounterparties(ctx context.Context, userID string, from, to time.Time, limit int) ([]domain.CounterpartySpend, error) {
	query := `
		SELECT counterparty_id, SUM(amount), COUNT(*)
		FROM transfer_events
		WHERE user_id = $1
		  AND direction = 'out'
		  AND status = 'COMPLETED'
		  AND created_at >= $2 AND created_at < $3
		GROUP BY counterparty_id
		ORDER BY SUM(amount) DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query top counterparties: %w", err)
	}
	defer rows.Close()

	results := make([]domain.CounterpartySpend, 0, limit)
	for rows.Next() {
		var c domain.CounterpartySpend
		if err := rows.Scan(&c.CounterpartyID, &c.Total, &c.Count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan counterparty aggregate: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}
