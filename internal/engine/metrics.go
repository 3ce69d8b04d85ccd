package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько времени заняла оценка/исполнение перевода
	RequestDuration *prometheus.HistogramVec

	// Traffic: решения движка по исходам
	DecisionsTotal *prometheus.CounterVec

	// Errors: классификация отказов
	ErrorTotal *prometheus.CounterVec

	// Критический счетчик: переводы, прошедшие во внешнем провайдере,
	// но не записанные в леджер. Любое ненулевое значение — повод для сверки.
	ReconciliationRequired prometheus.Counter

	// Saturation: состояние Circuit Breaker (0 - ок, 1 - выбило)
	CircuitBreakerState prometheus.Gauge

	// Журнал: заполненность буфера (backpressure)
	TrailBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payguard_request_duration_seconds",
			Help:    "Histogram of transfer evaluation/execution latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation", "status"}),

		DecisionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payguard_decisions_total",
			Help: "Total number of transfer decisions by outcome and reason.",
		}, []string{"outcome", "reason"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payguard_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}), // типы: invalid_amount, storage_unavailable, executor_failed

		ReconciliationRequired: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "payguard_reconciliation_required_total",
			Help: "Transfers executed externally but not committed to the budget ledger.",
		}),

		CircuitBreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "payguard_circuit_breaker_state",
			Help: "Current state of the transfer executor circuit breaker (0=closed, 1=open).",
		}),

		TrailBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "payguard_trail_buffer_utilization",
			Help: "Current number of events in the transfer trail buffer.",
		}),
	}
}
