package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/xela07ax/payguard-prototype/internal/connectors"
	"github.com/xela07ax/payguard-prototype/internal/infra"
)

// ReliabilityWrapper оборачивает внешний Transfer Executor в защитный
// контур: Rate Limiter -> Circuit Breaker -> Retry. Ретраи нацелены на
// транспортные сбои (throttle, сетевой лаг, 5xx); провайдер обязан быть
// идемпотентным по повторной подаче, иначе ретраи надо отключать.
type ReliabilityWrapper struct {
	next    connectors.TransferExecutor
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *Metrics
}

func NewReliabilityWrapper(next connectors.TransferExecutor, cfg infra.EngineConfig, metrics *Metrics) *ReliabilityWrapper {
	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payguard-executor",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if metrics == nil {
				return
			}
			if to == gobreaker.StateOpen {
				metrics.CircuitBreakerState.Set(1)
			} else {
				metrics.CircuitBreakerState.Set(0)
			}
		},
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.ExecutorRateLimit), cfg.ExecutorRateBurst)

	return &ReliabilityWrapper{
		next:    next,
		cb:      cb,
		limiter: limiter,
		metrics: metrics,
	}
}

func (w *ReliabilityWrapper) Execute(ctx context.Context, sourceAccount, destinationAddress string, amount decimal.Decimal) (*connectors.ExecutionResult, error) {
	// 1. Rate Limiter
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	var finalRes *connectors.ExecutionResult

	// 2. Circuit Breaker
	cbResult, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
			// Умный расчет задержки
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Провайдер вернул ThrottleError (считал Retry-After заголовок)
				var tErr *connectors.ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}

				// Остальные случаи (сетевой лаг, 500-ка) — экспоненциальный бэкофф
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			var callErr error
			finalRes, callErr = w.next.Execute(tCtx, sourceAccount, destinationAddress, amount)
			return callErr
		})

		return finalRes, retryErr
	})

	if err != nil {
		return nil, err
	}

	return cbResult.(*connectors.ExecutionResult), nil
}
