package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the strukt engine.
type Metrics struct {
	config MetricsConfig

	// Parse metrics
	parsesTotal   *prometheus.CounterVec
	parseDuration prometheus.Histogram

	// Plan and apply metrics
	operationsPlanned *prometheus.CounterVec
	operationsApplied *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec

	// Audit metrics
	driftItems *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parses_total",
				Help:      "Total number of document parses",
			},
			[]string{"status"},
		),
		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Duration of document parsing in seconds",
				Buckets:   buckets,
			},
		),

		operationsPlanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_planned_total",
				Help:      "Total number of filesystem operations planned",
			},
			[]string{"kind"},
		),
		operationsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_applied_total",
				Help:      "Total number of filesystem operations applied",
			},
			[]string{"kind", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of engine runs in seconds",
				Buckets:   buckets,
			},
			[]string{"command", "status"},
		),

		driftItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "drift_items",
				Help:      "Drift items found by the most recent audit",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.parsesTotal,
		m.parseDuration,
		m.operationsPlanned,
		m.operationsApplied,
		m.runDuration,
		m.driftItems,
	)

	return m, nil
}

// RecordParse records a document parse with its status and duration.
func (m *Metrics) RecordParse(status string, duration time.Duration) {
	if m.parsesTotal == nil {
		return
	}
	m.parsesTotal.WithLabelValues(status).Inc()
	m.parseDuration.Observe(duration.Seconds())
}

// RegisterCacheStats exposes a parse cache's hit/miss counters. The
// callbacks are read at scrape time, so the cache stays the single source
// of truth for its own bookkeeping.
func (m *Metrics) RegisterCacheStats(hits, misses func() float64) error {
	if m.registry == nil {
		return nil
	}

	hitsFn := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of parse cache hits",
		},
		hits,
	)
	missesFn := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of parse cache misses",
		},
		misses,
	)

	if err := m.registry.Register(hitsFn); err != nil {
		return err
	}
	return m.registry.Register(missesFn)
}

// RecordOperationPlanned records a planned filesystem operation.
func (m *Metrics) RecordOperationPlanned(kind string) {
	if m.operationsPlanned == nil {
		return
	}
	m.operationsPlanned.WithLabelValues(kind).Inc()
}

// RecordOperationApplied records an applied filesystem operation.
func (m *Metrics) RecordOperationApplied(kind, status string) {
	if m.operationsApplied == nil {
		return
	}
	m.operationsApplied.WithLabelValues(kind, status).Inc()
}

// RecordRun records a completed engine run.
func (m *Metrics) RecordRun(command, status string, duration time.Duration) {
	if m.runDuration == nil {
		return
	}
	m.runDuration.WithLabelValues(command, status).Observe(duration.Seconds())
}

// SetDriftItems records the drift item count of the latest audit.
func (m *Metrics) SetDriftItems(kind string, count float64) {
	if m.driftItems == nil {
		return
	}
	m.driftItems.WithLabelValues(kind).Set(count)
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
