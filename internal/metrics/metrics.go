// Package metrics holds the Prometheus instruments for the opportunity service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "opportunities"

// Metrics holds all service metrics.
type Metrics struct {
	// Sync runs
	SyncRunsTotal      *prometheus.CounterVec
	SyncDurationSecond *prometheus.HistogramVec
	LastSyncTimestamp  prometheus.Gauge

	// Pipeline stages
	SearchRequestsTotal *prometheus.CounterVec
	LLMRequestsTotal    *prometheus.CounterVec
	RecordsTotal        *prometheus.CounterVec
	ExpiredDeletedTotal prometheus.Counter

	// Scheduler
	SchedulerChecksTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on reg. A nil reg gets a fresh
// private registry, which keeps tests independent of each other.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.SyncRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sync_runs_total",
		Help:      "Sync runs by trigger and outcome",
	}, []string{"trigger", "outcome"})

	m.SyncDurationSecond = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "sync_duration_seconds",
		Help:      "Wall time of a sync run",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"trigger"})

	m.LastSyncTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_successful_sync_timestamp_seconds",
		Help:      "Unix time the last successful sync started",
	})

	m.SearchRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "search_requests_total",
		Help:      "Search provider calls by result (ok, error, cache_hit)",
	}, []string{"result"})

	m.LLMRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "llm_requests_total",
		Help:      "Structuring calls by provider and parse outcome",
	}, []string{"provider", "result"})

	m.RecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "records_total",
		Help:      "Per-record write outcomes (saved, skipped, error)",
	}, []string{"outcome"})

	m.ExpiredDeletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "expired_deleted_total",
		Help:      "Opportunities removed by the retention sweeper",
	})

	m.SchedulerChecksTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "scheduler_checks_total",
		Help:      "Scheduler gate decisions (sync, skip, error)",
	}, []string{"decision"})

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSync records the outcome of one sync run.
func (m *Metrics) ObserveSync(trigger, outcome string, started time.Time, elapsed time.Duration) {
	m.SyncRunsTotal.WithLabelValues(trigger, outcome).Inc()
	m.SyncDurationSecond.WithLabelValues(trigger).Observe(elapsed.Seconds())
	if outcome == "succeeded" {
		m.LastSyncTimestamp.Set(float64(started.Unix()))
	}
}
