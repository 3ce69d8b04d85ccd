package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/audit"
	"github.com/xela07ax/payguard-prototype/internal/connectors"
	"github.com/xela07ax/payguard-prototype/internal/engine"
	"github.com/xela07ax/payguard-prototype/internal/handler"
	"github.com/xela07ax/payguard-prototype/internal/infra"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
	"github.com/xela07ax/payguard-prototype/internal/policy"
	"github.com/xela07ax/payguard-prototype/internal/repository/postgres"
	"github.com/xela07ax/payguard-prototype/internal/risk"
	"github.com/xela07ax/payguard-prototype/internal/server"
	"github.com/xela07ax/payguard-prototype/internal/service"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Контекст жизненного цикла фоновых горутин: cancel() по SIGTERM
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	repo, err := postgres.NewWalletRepo(appCtx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal("failed to init postgres pool", zap.Error(err))
	}
	defer repo.Close()

	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := repo.Ping(pingCtx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	pingCancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// 3. Ключи RS256: публичный проверяет, приватный подписывает
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("failed to parse public key", zap.Error(err))
	}
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("failed to parse private key", zap.Error(err))
	}
	validator := auth.NewBaseValidator(publicKey)

	// 4. Метрики
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("metrics endpoint started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 5. Журнал переводов (асинхронный, с батчингом)
	trail := audit.NewTrail(repo, logger, cfg.Engine.AuditBufferSize, cfg.Engine.AuditFlushInterval)
	trail.Start()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-appCtx.Done():
				return
			case <-ticker.C:
				metrics.TrailBufferFill.Set(float64(trail.Len()))
			}
		}
	}()

	// 6. Кэш политик + подписка на сигналы инвалидации
	policyCache := policy.NewConfigCache(repo, cfg.Engine.StorageTimeout, logger)
	go engine.ListenInvalidationResilient(appCtx, rdb, logger.Named("policy-sub"),
		infra.RedisChanPolicyInvalidate,
		policyCache.Reset,
		policyCache.Invalidate,
	)

	// 7. Execution Layer: мок-провайдер под защитным контуром
	// (rate limit -> circuit breaker -> retry)
	provider := connectors.NewMockLedgerProvider()
	provider.Seed("acc-demo", decimal.RequireFromString("250.00"))
	safeExecutor := engine.NewReliabilityWrapper(provider, cfg.Engine, metrics)

	// 8. Сервисный слой
	budgetLedger := service.NewBudgetLedger(repo, cfg.Engine.StorageTimeout, logger)
	trustRegistry := service.NewTrustRegistry(repo, cfg.Engine.StorageTimeout, logger)
	alertCenter := service.NewAlertCenter(repo, policyCache, cfg.Engine.StorageTimeout, logger)
	analytics := service.NewAnalytics(repo, policyCache, cfg.Engine.AnalyticsMaxWindowDays, cfg.Engine.StorageTimeout, logger)
	policyService := service.NewPolicyService(repo, policyCache, rdb, cfg.Engine.StorageTimeout, logger)
	authService := service.NewAuthService(repo, privateKey, cfg.Auth.TokenTTL)
	riskAnalyzer := risk.NewAnalyzer(alertCenter, logger)

	// 9. Сборка ядра
	core := engine.NewGuardCore(
		policyCache,
		trustRegistry,
		budgetLedger,
		repo, // AccountSource
		alertCenter,
		riskAnalyzer,
		safeExecutor,
		provider, // BalanceSource
		trail,
		metrics,
		logger,
	)

	// 10. HTTP Server
	guardServer := server.NewGuardServer(
		cfg,
		logger,
		validator,
		handler.NewAuthHandler(authService),
		handler.NewTransferHandler(core),
		handler.NewTrustHandler(trustRegistry),
		handler.NewAlertHandler(alertCenter),
		handler.NewPolicyHandler(policyService),
		handler.NewAnalyticsHandler(analytics),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      guardServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 11. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("payguard engine started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("payguard engine stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	cancel()      // Останавливаем фоновые слушатели
	trail.Stop()  // Дописываем хвост журнала
	logger.Info("payguard engine exited properly")
}
