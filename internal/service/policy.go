package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/policy"
)

// PolicyRepository описывает требования сервиса к хранилищу политик.
type PolicyRepository interface {
	GetOrCreatePolicy(ctx context.Context, userID string) (domain.PolicyConfig, error)
	UpdatePolicy(ctx context.Context, userID string, u domain.PolicyUpdate) (domain.PolicyConfig, error)
}

// CacheInvalidator — локальный L1 кэш политик движка.
type CacheInvalidator interface {
	Invalidate(userID string)
}

// PolicyService — чтение и правка лимитов пользователя. После успешного
// UPDATE выбивает запись из локального кэша и шлет сигнал инвалидации
// остальным инстансам через Redis.
type PolicyService struct {
	repo    PolicyRepository
	cache   CacheInvalidator
	rdb     *redis.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewPolicyService(repo PolicyRepository, cache CacheInvalidator, rdb *redis.Client, storageTimeout time.Duration, logger *zap.Logger) *PolicyService {
	return &PolicyService{
		repo:    repo,
		cache:   cache,
		rdb:     rdb,
		timeout: storageTimeout,
		logger:  logger.Named("policy-service"),
	}
}

// Get возвращает действующую политику, материализуя дефолтную при первом
// обращении.
func (s *PolicyService) Get(ctx context.Context, userID string) (domain.PolicyConfig, error) {
	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfg, err := s.repo.GetOrCreatePolicy(tCtx, userID)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return cfg, nil
}

// Update применяет частичное обновление лимитов (nil-поля не трогаются)
// и инициирует инвалидацию кэшей.
func (s *PolicyService) Update(ctx context.Context, userID string, u domain.PolicyUpdate) (domain.PolicyConfig, error) {
	if err := u.Validate(); err != nil {
		return domain.PolicyConfig{}, err
	}

	tCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfg, err := s.repo.UpdatePolicy(tCtx, userID, u)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	// Сначала локальный кэш, потом broadcast. Сбой publish не откатывает
	// UPDATE: чужие инстансы дочитают свежую политику после своего
	// reconnect-reset, у нас она уже консистентна.
	s.cache.Invalidate(userID)
	if err := policy.NotifyUpdate(ctx, s.rdb, userID); err != nil {
		s.logger.Warn("failed to broadcast policy invalidation",
			zap.String("user_id", userID), zap.Error(err))
	}

	s.logger.Info("policy updated", zap.String("user_id", userID))
	return cfg, nil
}
