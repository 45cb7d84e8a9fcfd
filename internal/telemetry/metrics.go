package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики scheduler'а.
type Metrics struct {
	// Firings — срабатывания guard'а по исходу (ran, skipped, failed, lock_error, store_error).
	Firings *prometheus.CounterVec

	// LockWait — время ожидания распределённого лока.
	LockWait *prometheus.HistogramVec

	// ActionDuration — длительность выполнения действия job.
	ActionDuration *prometheus.HistogramVec

	// JobsScheduled — число jobs, зарегистрированных на этом инстансе.
	JobsScheduled prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// reg == nil — метрики создаются, но не регистрируются (тесты).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Firings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "syncron_firings_total",
			Help: "Local timer firings processed by the dedup guard, by outcome",
		}, []string{"job", "outcome"}),

		LockWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "syncron_lock_wait_seconds",
			Help:    "Time spent waiting for the distributed job lock",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"job"}),

		ActionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "syncron_action_duration_seconds",
			Help:    "Duration of job actions executed on this instance",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),

		JobsScheduled: f.NewGauge(prometheus.GaugeOpts{
			Name: "syncron_jobs_scheduled",
			Help: "Jobs registered with the local timer",
		}),
	}
}
