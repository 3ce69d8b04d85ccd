package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// AlertRepository описывает требования Alert Center к хранилищу.
type AlertRepository interface {
	InsertAlert(ctx context.Context, a *domain.Alert) error
	AlertExistsToday(ctx context.Context, userID string, alertType domain.AlertType) (bool, error)
	UnreadAlerts(ctx context.Context, userID string) ([]domain.Alert, error)
	MarkAlertsRead(ctx context.Context, userID string, ids []string) (int64, error)
}

// AlertPolicySource — откуда Alert Center берет порог low_balance.
type AlertPolicySource interface {
	Get(ctx context.Context, userID string) (domain.PolicyConfig, error)
}

// AlertCenter — пользовательские уведомления. Здесь, а не в репозитории,
// живет правило дедупликации: low_balance не чаще раза в календарный
// день (UTC), остальные типы не дедупятся.
type AlertCenter struct {
	repo     AlertRepository
	policies AlertPolicySource
	timeout  time.Duration
	logger   *zap.Logger
}

func NewAlertCenter(repo AlertRepository, policies AlertPolicySource, storageTimeout time.Duration, logger *zap.Logger) *AlertCenter {
	return &AlertCenter{
		repo:     repo,
		policies: policies,
		timeout:  storageTimeout,
		logger:   logger.Named("alert-center"),
	}
}

// Raise создает уведомление. ID генерируется здесь, если вызывающий его не задал.
func (s *AlertCenter) Raise(ctx context.Context, a *domain.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.InsertAlert(tCtx, a); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// CheckLowBalance сравнивает баланс с порогом политики и при необходимости
// создает low_balance уведомление. Порог включительный: баланс РОВНО на
// пороге уже считается низким. Возвращает (nil, nil), когда уведомление
// не нужно: баланс выше порога либо сегодняшнее уже существует.
func (s *AlertCenter) CheckLowBalance(ctx context.Context, userID string, currentBalance decimal.Decimal) (*domain.Alert, error) {
	policyCfg, err := s.policies.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	if currentBalance.GreaterThan(policyCfg.LowBalanceAlertThreshold) {
		return nil, nil
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Дедуп: одна low_balance в календарный день. Между проверкой и вставкой
	// есть окно гонки; дубль в нем — косметический дефект, не потеря данных.
	exists, err := s.repo.AlertExistsToday(tCtx, userID, domain.AlertLowBalance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if exists {
		return nil, nil
	}

	alert := &domain.Alert{
		ID:      uuid.New().String(),
		UserID:  userID,
		Type:    domain.AlertLowBalance,
		Title:   "Low balance",
		Message: fmt.Sprintf("Your balance %s is at or below the alert threshold %s", currentBalance, policyCfg.LowBalanceAlertThreshold),
		Metadata: map[string]any{
			"balance":   currentBalance.String(),
			"threshold": policyCfg.LowBalanceAlertThreshold.String(),
		},
	}
	if err := s.repo.InsertAlert(tCtx, alert); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.logger.Info("low balance alert raised",
		zap.String("user_id", userID),
		zap.String("balance", currentBalance.String()))
	return alert, nil
}

// NotifyDeposit создает deposit_received уведомление (без дедупликации:
// каждое зачисление — отдельное событие).
func (s *AlertCenter) NotifyDeposit(ctx context.Context, userID string, amount decimal.Decimal, source string) (*domain.Alert, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %s", domain.ErrInvalidAmount, amount)
	}

	alert := &domain.Alert{
		UserID:  userID,
		Type:    domain.AlertDepositReceived,
		Title:   "Deposit received",
		Message: fmt.Sprintf("You received %s from %s", amount, source),
		Metadata: map[string]any{
			"amount": amount.String(),
			"source": source,
		},
	}
	if err := s.Raise(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Unread — непрочитанные уведомления, новые первыми.
func (s *AlertCenter) Unread(ctx context.Context, userID string) ([]domain.Alert, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	alerts, err := s.repo.UnreadAlerts(tCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return alerts, nil
}

// MarkRead помечает прочитанными указанные уведомления (все непрочитанные
// при пустом списке). Возвращает число затронутых строк.
func (s *AlertCenter) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	affected, err := s.repo.MarkAlertsRead(tCtx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return affected, nil
}
