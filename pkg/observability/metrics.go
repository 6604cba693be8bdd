package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/flipper/pkg/domain"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	commitsTotal  prometheus.Counter
	filesChanged  prometheus.Histogram
}

// NewMetrics creates a registry with the pipeline collectors plus the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipper_runs_total",
				Help: "Total pipeline runs by trigger and terminal status",
			},
			[]string{"trigger", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flipper_run_duration_seconds",
				Help:    "End-to-end duration of pipeline runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flipper_stage_duration_seconds",
				Help:    "Duration of individual pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"stage"},
		),
		commitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flipper_commits_total",
				Help: "Total commits pushed by the publisher",
			},
		),
		filesChanged: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flipper_commit_files_changed",
				Help:    "Number of files changed per published commit",
				Buckets: prometheus.LinearBuckets(1, 2, 10),
			},
		),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.stageDuration,
		m.commitsTotal,
		m.filesChanged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry so callers can register
// additional collectors, like the run store middleware.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record pipeline metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			m.runsTotal.WithLabelValues(string(e.Trigger), string(e.Status)).Inc()
			m.runDuration.WithLabelValues(string(e.Status)).Observe(e.Duration.Seconds())
		},
		OnStageEnd: func(ctx context.Context, e *domain.StageEvent) {
			m.stageDuration.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
		},
		OnPublish: func(ctx context.Context, e *domain.PublishEvent) {
			m.commitsTotal.Inc()
			m.filesChanged.Observe(float64(len(e.ChangedFiles)))
		},
	}
}
