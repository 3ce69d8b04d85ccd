package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// TrustRepository описывает требования сервиса к реестру доверия.
type TrustRepository interface {
	UpsertTrust(ctx context.Context, userID, counterpartyID string, overrideLimit *decimal.Decimal) (domain.TrustEntry, error)
	DeleteTrust(ctx context.Context, userID, counterpartyID string) error
	GetTrust(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error)
	ListTrust(ctx context.Context, userID string) ([]domain.TrustEntry, error)
}

// TrustRegistry — per-user список доверенных контрагентов.
// Trust идемпотентен: повторный вызов обновляет override, а не плодит записи.
type TrustRegistry struct {
	repo    TrustRepository
	timeout time.Duration
	logger  *zap.Logger
}

func NewTrustRegistry(repo TrustRepository, storageTimeout time.Duration, logger *zap.Logger) *TrustRegistry {
	return &TrustRegistry{
		repo:    repo,
		timeout: storageTimeout,
		logger:  logger.Named("trust-registry"),
	}
}

// Trust добавляет контрагента в доверенные (или обновляет его override).
// nil override означает "действует общий лимит политики".
func (s *TrustRegistry) Trust(ctx context.Context, userID, counterpartyID string, overrideLimit *decimal.Decimal) (domain.TrustEntry, error) {
	if overrideLimit != nil && overrideLimit.IsNegative() {
		return domain.TrustEntry{}, fmt.Errorf("%w: override limit must not be negative", domain.ErrInvalidAmount)
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.repo.UpsertTrust(tCtx, userID, counterpartyID, overrideLimit)
	if err != nil {
		return domain.TrustEntry{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.logger.Info("counterparty trusted",
		zap.String("user_id", userID),
		zap.String("counterparty_id", counterpartyID),
		zap.Bool("has_override", overrideLimit != nil))
	return entry, nil
}

// Revoke убирает контрагента из доверенных. Отзыв несуществующей записи —
// не ошибка: итоговое состояние то же самое.
func (s *TrustRegistry) Revoke(ctx context.Context, userID, counterpartyID string) error {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeleteTrust(tCtx, userID, counterpartyID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.logger.Info("counterparty trust revoked",
		zap.String("user_id", userID),
		zap.String("counterparty_id", counterpartyID))
	return nil
}

// Lookup возвращает запись о доверии либо (nil, nil): "не доверен" —
// нормальное состояние, а не ошибка.
func (s *TrustRegistry) Lookup(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.repo.GetTrust(tCtx, userID, counterpartyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return entry, nil
}

// List — все доверенные контрагенты пользователя.
func (s *TrustRegistry) List(ctx context.Context, userID string) ([]domain.TrustEntry, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.repo.ListTrust(tCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return entries, nil
}
