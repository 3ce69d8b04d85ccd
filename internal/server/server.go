package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/engine"
	"github.com/xela07ax/payguard-prototype/internal/handler"
	"github.com/xela07ax/payguard-prototype/internal/infra"
	"github.com/xela07ax/payguard-prototype/internal/infra/auth"
)

type GuardServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Проверка токенов (RS256)
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler      *handler.AuthHandler      // /auth/token
	transferHandler  *handler.TransferHandler  // /v1/transfers, /v1/budget
	trustHandler     *handler.TrustHandler     // /v1/trust
	alertHandler     *handler.AlertHandler     // /v1/alerts
	policyHandler    *handler.PolicyHandler    // /v1/policy
	analyticsHandler *handler.AnalyticsHandler // /v1/spending/summary
}

// NewGuardServer инициализирует HTTP-слой движка со всеми зависимостями
func NewGuardServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	transferH *handler.TransferHandler,
	trustH *handler.TrustHandler,
	alertH *handler.AlertHandler,
	policyH *handler.PolicyHandler,
	analyticsH *handler.AnalyticsHandler,
) *GuardServer {
	s := &GuardServer{
		router:           chi.NewRouter(),
		logger:           logger.Named("guard-api"),
		cfg:              cfg,
		authValidator:    validator,
		authHandler:      authH,
		transferHandler:  transferH,
		trustHandler:     trustH,
		alertHandler:     alertH,
		policyHandler:    policyH,
		analyticsHandler: analyticsH,
	}

	s.routes()
	return s
}

func (s *GuardServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(engine.TracingMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Post("/auth/token", s.authHandler.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (требует RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Решения и исполнение переводов
		r.Route("/v1/transfers", func(r chi.Router) {
			r.Post("/evaluate", s.transferHandler.Evaluate) // Dry-run решения
			r.Post("/execute", s.transferHandler.Execute)   // Решение + внешний перевод + коммит
		})

		// Бюджетный леджер
		r.Get("/v1/budget/status", s.transferHandler.BudgetStatus)
		r.Post("/v1/spending/record", s.transferHandler.RecordSpend) // Коммит внешнего перевода
		r.Post("/v1/deposits/record", s.transferHandler.RecordDeposit)
		r.Get("/v1/spending/summary", s.analyticsHandler.Summary)

		// Реестр доверенных контрагентов
		r.Route("/v1/trust", func(r chi.Router) {
			r.Get("/", s.trustHandler.List)
			r.Put("/{counterpartyID}", s.trustHandler.Put)
			r.Delete("/{counterpartyID}", s.trustHandler.Delete)
		})

		// Уведомления
		r.Route("/v1/alerts", func(r chi.Router) {
			r.Get("/unread", s.alertHandler.Unread)
			r.Post("/read", s.alertHandler.MarkRead)
		})

		// Лимиты пользователя
		r.Route("/v1/policy", func(r chi.Router) {
			r.Get("/", s.policyHandler.Get)
			r.Patch("/", s.policyHandler.Update)
		})
	})
}

// ServeHTTP позволяет использовать GuardServer как стандартный http.Handler
func (s *GuardServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
