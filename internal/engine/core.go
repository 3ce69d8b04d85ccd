package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/audit"
	"github.com/xela07ax/payguard-prototype/internal/connectors"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// Контракты ядра к окружению. Объявлены у потребителя: ядру не важно,
// кэш это, сервис или фейк из теста.

type PolicySource interface {
	Get(ctx context.Context, userID string) (domain.PolicyConfig, error)
}

type TrustSource interface {
	Lookup(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error)
}

type BudgetSource interface {
	TodaySpend(ctx context.Context, userID string) (decimal.Decimal, error)
	WeekSpend(ctx context.Context, userID string) (decimal.Decimal, error)
	RecordSpend(ctx context.Context, userID string, amount decimal.Decimal) error
}

type AccountSource interface {
	GetAccountID(ctx context.Context, userID string) (string, error)
}

type AlertSink interface {
	CheckLowBalance(ctx context.Context, userID string, currentBalance decimal.Decimal) (*domain.Alert, error)
	NotifyDeposit(ctx context.Context, userID string, amount decimal.Decimal, source string) (*domain.Alert, error)
}

// BlockNotifier получает отклоненные попытки перевода (реализуется
// risk.Analyzer). Advisory: не влияет на решение.
type BlockNotifier interface {
	NotifyBlocked(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, d domain.Decision)
}

// GuardCore — оркестратор потока "решение -> внешний перевод -> коммит".
// Сам он ничего не мутирует на этапе решения: оценка read-only, поэтому
// отмена запроса не оставляет частичных записей. Единственная мутация —
// RecordSpend после успешного внешнего перевода.
type GuardCore struct {
	policies PolicySource
	trust    TrustSource
	budget   BudgetSource
	accounts AccountSource
	alerts   AlertSink
	risk     BlockNotifier
	executor connectors.TransferExecutor
	balances connectors.BalanceSource
	trail    audit.Recorder
	metrics  *Metrics
	logger   *zap.Logger
}

func NewGuardCore(
	policies PolicySource,
	trust TrustSource,
	budget BudgetSource,
	accounts AccountSource,
	alerts AlertSink,
	riskNotifier BlockNotifier,
	executor connectors.TransferExecutor,
	balances connectors.BalanceSource,
	trail audit.Recorder,
	metrics *Metrics,
	logger *zap.Logger,
) *GuardCore {
	return &GuardCore{
		policies: policies,
		trust:    trust,
		budget:   budget,
		accounts: accounts,
		alerts:   alerts,
		risk:     riskNotifier,
		executor: executor,
		balances: balances,
		trail:    trail,
		metrics:  metrics,
		logger:   logger.Named("guard-core"),
	}
}

// EvaluateTransfer собирает снимок (политика, доверие, расходы) и выносит
// решение. Любой сбой чтения — fail closed: неопределенность по бюджету
// или доверию никогда не превращается в авто-апрув. Ошибка возвращается
// только на невалидную сумму: это отказ по входу, а не решение.
func (c *GuardCore) EvaluateTransfer(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, confirmed bool) (domain.Decision, error) {
	start := time.Now()

	if !amount.IsPositive() {
		c.metrics.ErrorTotal.WithLabelValues("invalid_amount").Inc()
		return domain.Decision{}, domain.ErrInvalidAmount
	}

	decision, ok := c.evaluate(ctx, userID, counterpartyID, amount, confirmed)
	if !ok {
		c.metrics.ErrorTotal.WithLabelValues("storage_unavailable").Inc()
	}

	c.metrics.DecisionsTotal.WithLabelValues(string(decision.Outcome), string(decision.Reason)).Inc()
	c.metrics.RequestDuration.WithLabelValues("evaluate", string(decision.Outcome)).Observe(time.Since(start).Seconds())

	c.trail.Record(audit.Event{
		ID:             uuid.New().String(),
		TraceID:        extractTraceID(ctx),
		UserID:         userID,
		CounterpartyID: counterpartyID,
		Direction:      string(domain.DirectionOut),
		Amount:         amount,
		Outcome:        string(decision.Outcome),
		Reason:         string(decision.Reason),
		Confirmed:      confirmed,
		Status:         audit.StatusEvaluated,
		Timestamp:      start,
		DurationMs:     time.Since(start).Milliseconds(),
	})

	return decision, nil
}

// evaluate возвращает (решение, false) при сбое чтения — вызывающий
// инкрементит метрику, решение уже fail-closed.
func (c *GuardCore) evaluate(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, confirmed bool) (domain.Decision, bool) {
	policyCfg, err := c.policies.Get(ctx, userID)
	if err != nil {
		c.logger.Error("failed to read policy, failing closed",
			zap.String("user_id", userID), zap.Error(err))
		return FailClosed(), false
	}

	trustEntry, err := c.trust.Lookup(ctx, userID, counterpartyID)
	if err != nil {
		c.logger.Error("failed to read trust entry, failing closed",
			zap.String("user_id", userID),
			zap.String("counterparty_id", counterpartyID), zap.Error(err))
		return FailClosed(), false
	}

	todaySpend, err := c.budget.TodaySpend(ctx, userID)
	if err != nil {
		c.logger.Error("failed to read daily spend, failing closed",
			zap.String("user_id", userID), zap.Error(err))
		return FailClosed(), false
	}

	weekSpend, err := c.budget.WeekSpend(ctx, userID)
	if err != nil {
		c.logger.Error("failed to read weekly spend, failing closed",
			zap.String("user_id", userID), zap.Error(err))
		return FailClosed(), false
	}

	return Evaluate(Inputs{
		Policy:     policyCfg,
		Trust:      trustEntry,
		TodaySpend: todaySpend,
		WeekSpend:  weekSpend,
		Amount:     amount,
		Confirmed:  confirmed,
	}), true
}

// ExecuteTransfer — полный проход: решение, внешний перевод, коммит расхода,
// проверка низкого баланса. Перевод исполняется только для Approved-решений;
// во всех остальных случаях возвращается само решение, и вызывающий
// показывает его пользователю.
func (c *GuardCore) ExecuteTransfer(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, confirmed bool) (domain.Decision, *connectors.ExecutionResult, error) {
	start := time.Now()

	decision, err := c.EvaluateTransfer(ctx, userID, counterpartyID, amount, confirmed)
	if err != nil {
		return domain.Decision{}, nil, err
	}
	if !decision.Approved() {
		c.risk.NotifyBlocked(ctx, userID, counterpartyID, amount, decision)
		return decision, nil, nil
	}

	accountID, err := c.accounts.GetAccountID(ctx, userID)
	if err != nil {
		c.logger.Error("failed to resolve source account", zap.String("user_id", userID), zap.Error(err))
		return decision, nil, err
	}

	event := audit.Event{
		ID:             uuid.New().String(),
		TraceID:        extractTraceID(ctx),
		UserID:         userID,
		CounterpartyID: counterpartyID,
		Direction:      string(domain.DirectionOut),
		Amount:         amount,
		Outcome:        string(decision.Outcome),
		Reason:         string(decision.Reason),
		Confirmed:      confirmed,
		Timestamp:      start,
	}

	res, execErr := c.executor.Execute(ctx, accountID, counterpartyID, amount)
	if execErr != nil || res == nil || !res.Success {
		event.Status = audit.StatusFailed
		switch {
		case execErr != nil:
			event.Error = execErr.Error()
		case res == nil:
			event.Error = "executor returned no result"
		default:
			event.Error = res.FinalState
		}
		event.DurationMs = time.Since(start).Milliseconds()
		c.trail.Record(event)
		c.metrics.ErrorTotal.WithLabelValues("executor_failed").Inc()
		c.metrics.RequestDuration.WithLabelValues("execute", "failed").Observe(time.Since(start).Seconds())
		return decision, res, execErr
	}
	event.ExternalTxRef = res.ExternalTxRef

	// Коммит расхода. Перевод уже прошел: сбой здесь — самый опасный случай
	// (деньги ушли, бюджет не списан). Фиксируем для ручной сверки,
	// НЕ возвращаем ошибку — внешний перевод состоялся.
	if err := c.budget.RecordSpend(ctx, userID, amount); err != nil {
		c.logger.Error("RECONCILIATION REQUIRED: transfer executed but spend not recorded",
			zap.String("user_id", userID),
			zap.String("counterparty_id", counterpartyID),
			zap.String("amount", amount.String()),
			zap.String("external_tx_ref", res.ExternalTxRef),
			zap.Error(err))
		c.metrics.ReconciliationRequired.Inc()

		event.Status = audit.StatusReconcile
		event.Error = err.Error()
		event.DurationMs = time.Since(start).Milliseconds()
		c.trail.Record(event)
		c.metrics.RequestDuration.WithLabelValues("execute", "reconcile").Observe(time.Since(start).Seconds())
		return decision, res, nil
	}

	// Пост-транзакционная проверка баланса — advisory: сбой не роняет перевод
	c.checkLowBalance(ctx, userID, accountID)

	event.Status = audit.StatusCompleted
	event.DurationMs = time.Since(start).Milliseconds()
	c.trail.Record(event)
	c.metrics.RequestDuration.WithLabelValues("execute", "completed").Observe(time.Since(start).Seconds())

	return decision, res, nil
}

func (c *GuardCore) checkLowBalance(ctx context.Context, userID, accountID string) {
	balance, err := c.balances.CurrentBalance(ctx, accountID)
	if err != nil {
		c.logger.Warn("balance check skipped: provider unavailable",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	if _, err := c.alerts.CheckLowBalance(ctx, userID, balance); err != nil {
		c.logger.Warn("low balance alert check failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// RecordCompletedSpend коммитит расход перевода, исполненного внешним
// каналом. Вызывающий обязан гарантировать at-most-once на один
// завершенный перевод — иначе двойной учет.
func (c *GuardCore) RecordCompletedSpend(ctx context.Context, userID string, amount decimal.Decimal) error {
	return c.budget.RecordSpend(ctx, userID, amount)
}

// RecordDeposit фиксирует зачисление: строка журнала (direction=in)
// и deposit_received уведомление. Дневной агрегат расходов НЕ трогается:
// лимиты считаются только по исходящим, зачисления бюджет не "возвращают".
func (c *GuardCore) RecordDeposit(ctx context.Context, userID, source string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	c.trail.Record(audit.Event{
		ID:             uuid.New().String(),
		TraceID:        extractTraceID(ctx),
		UserID:         userID,
		CounterpartyID: source,
		Direction:      string(domain.DirectionIn),
		Amount:         amount,
		Status:         audit.StatusCompleted,
		Timestamp:      time.Now(),
	})

	if _, err := c.alerts.NotifyDeposit(ctx, userID, amount, source); err != nil {
		return err
	}
	return nil
}

// GetBudgetStatus — снимок бюджета для отображения.
func (c *GuardCore) GetBudgetStatus(ctx context.Context, userID string) (domain.BudgetStatus, error) {
	policyCfg, err := c.policies.Get(ctx, userID)
	if err != nil {
		return domain.BudgetStatus{}, err
	}
	todaySpend, err := c.budget.TodaySpend(ctx, userID)
	if err != nil {
		return domain.BudgetStatus{}, err
	}
	weekSpend, err := c.budget.WeekSpend(ctx, userID)
	if err != nil {
		return domain.BudgetStatus{}, err
	}
	return domain.NewBudgetStatus(policyCfg, todaySpend, weekSpend), nil
}
