package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/impulse/pkg/domain"
)

// Metrics exports simulator activity as Prometheus collectors.
type Metrics struct {
	completed prometheus.Counter
	abandoned *prometheus.CounterVec
	ticks     prometheus.Counter
	active    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impulse_customers_completed_total",
			Help: "Total number of customers that completed the funnel",
		}),
		abandoned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impulse_customers_abandoned_total",
				Help: "Total number of customers that abandoned, by step and reason",
			},
			[]string{"step_id", "reason"},
		),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impulse_ticks_total",
			Help: "Total number of committed simulation ticks",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "impulse_active_customers",
			Help: "Customers still moving through the funnel",
		}),
	}
	for _, c := range []prometheus.Collector{m.completed, m.abandoned, m.ticks, m.active} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that keep the collectors current.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.active.Set(float64(e.Customers))
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			m.ticks.Inc()
			m.active.Set(float64(e.Population.Active))
		},
		OnComplete: func(_ context.Context, _ *domain.CustomerEvent) {
			m.completed.Inc()
		},
		OnAbandon: func(_ context.Context, e *domain.CustomerEvent) {
			m.abandoned.WithLabelValues(e.StepID, string(e.Reason)).Inc()
		},
		OnRunStop: func(_ context.Context, _ *domain.RunEvent) {
			m.active.Set(0)
		},
	}
}
