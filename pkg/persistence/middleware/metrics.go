package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

type metricsMiddleware struct {
	next ports.RunStore
	ops  *prometheus.CounterVec
	dur  *prometheus.HistogramVec
}

// NewMetricsMiddleware creates a middleware that records operation
// counts and latencies for the wrapped store. It registers its
// collectors on reg, so call it once per registry.
func NewMetricsMiddleware(reg prometheus.Registerer) Middleware {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipper_run_store_operations_total",
			Help: "Total run store operations by outcome",
		},
		[]string{"op", "outcome"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "flipper_run_store_operation_duration_seconds",
			Help: "Duration of run store operations",
		},
		[]string{"op"},
	)
	reg.MustRegister(ops, dur)

	return func(next ports.RunStore) ports.RunStore {
		return &metricsMiddleware{next: next, ops: ops, dur: dur}
	}
}

func (m *metricsMiddleware) Save(ctx context.Context, run *domain.Run) error {
	start := time.Now()
	err := m.next.Save(ctx, run)
	m.record("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, id string) (*domain.Run, error) {
	start := time.Now()
	run, err := m.next.Load(ctx, id)
	m.record("load", start, err)
	return run, err
}

func (m *metricsMiddleware) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	start := time.Now()
	runs, err := m.next.List(ctx, limit)
	m.record("list", start, err)
	return runs, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.record("delete", start, err)
	return err
}

func (m *metricsMiddleware) record(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(op, outcome).Inc()
	m.dur.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
