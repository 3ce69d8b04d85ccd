package risk

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// AlertRaiser описывает возможности, необходимые анализатору.
// Реализовывать этот интерфейс будет AlertCenter из пакета service.
type AlertRaiser interface {
	Raise(ctx context.Context, a *domain.Alert) error
}

// Analyzer переводит заблокированные попытки перевода в пользовательские
// уведомления. Advisory-слой: сбой здесь никогда не влияет на само решение,
// оно уже принято движком.
type Analyzer struct {
	alerts AlertRaiser
	logger *zap.Logger
}

func NewAnalyzer(alerts AlertRaiser, logger *zap.Logger) *Analyzer {
	return &Analyzer{alerts: alerts, logger: logger.Named("risk-analyzer")}
}

// NotifyBlocked создает transfer_blocked уведомление по отклоненной попытке.
// Без дедупликации: каждая заблокированная попытка — отдельное событие,
// пользователь должен видеть их все.
func (a *Analyzer) NotifyBlocked(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, d domain.Decision) {
	if d.Outcome != domain.OutcomeBlocked {
		return
	}

	alert := &domain.Alert{
		UserID:  userID,
		Type:    domain.AlertTransferBlocked,
		Title:   "Transfer blocked",
		Message: d.Message,
		Metadata: map[string]any{
			"counterparty_id": counterpartyID,
			"amount":          amount.String(),
			"reason":          string(d.Reason),
		},
	}

	if err := a.alerts.Raise(ctx, alert); err != nil {
		a.logger.Warn("failed to raise transfer_blocked alert",
			zap.String("user_id", userID), zap.Error(err))
		return
	}

	a.logger.Info("transfer blocked",
		zap.String("user_id", userID),
		zap.String("counterparty_id", counterpartyID),
		zap.String("reason", string(d.Reason)),
	)
}
