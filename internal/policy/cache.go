package policy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/payguard-prototype/internal/domain"
	"github.com/xela07ax/payguard-prototype/internal/infra"
	"go.uber.org/zap"
)

type PolicyRepository interface {
	GetOrCreatePolicy(ctx context.Context, userID string) (domain.PolicyConfig, error)
}

// ConfigCache — потокобезопасный in-memory кэш PolicyConfig.
// Hot Path решения читает политику из RAM; промах идет в Postgres через
// get-or-create (политика материализуется с дефолтами при первом обращении).
// В распределенной конфигурации инстансы синхронизируются сигналом
// инвалидации в Redis: консольное обновление политики выбивает запись
// из L1 на всех движках.
type ConfigCache struct {
	mu       sync.RWMutex
	policies map[string]domain.PolicyConfig // user_id -> config

	repo    PolicyRepository
	timeout time.Duration
	logger  *zap.Logger
}

func NewConfigCache(repo PolicyRepository, storageTimeout time.Duration, logger *zap.Logger) *ConfigCache {
	return &ConfigCache{
		policies: make(map[string]domain.PolicyConfig),
		repo:     repo,
		timeout:  storageTimeout,
		logger:   logger.Named("policy-cache"),
	}
}

// Get возвращает политику пользователя: сначала RAM, потом БД.
// Промах идет в хранилище с ограниченным таймаутом и отдает
// ErrStorageUnavailable — fail closed обрабатывает движок,
// кэш решений не принимает.
func (c *ConfigCache) Get(ctx context.Context, userID string) (domain.PolicyConfig, error) {
	c.mu.RLock()
	p, ok := c.policies[userID]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	tCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	p, err := c.repo.GetOrCreatePolicy(tCtx, userID)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	c.mu.Lock()
	c.policies[userID] = p
	c.mu.Unlock()
	return p, nil
}

// Invalidate выкидывает запись из локального кэша.
func (c *ConfigCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.policies, userID)
	c.mu.Unlock()
	c.logger.Debug("policy cache entry invalidated", zap.String("user_id", userID))
}

// Reset очищает весь кэш (используется при переподключении к Redis,
// когда сигналы инвалидации могли быть пропущены).
func (c *ConfigCache) Reset() {
	c.mu.Lock()
	c.policies = make(map[string]domain.PolicyConfig)
	c.mu.Unlock()
	c.logger.Info("policy cache reset")
}

// NotifyUpdate отправляет широковещательный сигнал инвалидации.
// Вызывается сервисом после успешного UPDATE политики в БД.
func NotifyUpdate(ctx context.Context, rdb *redis.Client, userID string) error {
	return rdb.Publish(ctx, infra.RedisChanPolicyInvalidate, userID).Err()
}
