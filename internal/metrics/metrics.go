// Package metrics exposes Prometheus counters fed by the engine lifecycle hooks.
package metrics

import (
	"context"
	"strconv"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector groups the ticketflow metrics.
type Collector struct {
	Transitions *prometheus.CounterVec
	Runs        *prometheus.CounterVec
	Resets      prometheus.Counter
	RunLength   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketflow_transitions_total",
				Help: "Total number of single-symbol steps by source and target state",
			},
			[]string{"from", "to"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketflow_runs_total",
				Help: "Total number of sequence evaluations by final state and verdict",
			},
			[]string{"final", "accepted"},
		),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketflow_resets_total",
			Help: "Total number of session resets",
		}),
		RunLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketflow_run_length_symbols",
			Help:    "Number of symbols per evaluated sequence",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
	}

	for _, col := range []prometheus.Collector{c.Transitions, c.Runs, c.Resets, c.RunLength} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			c.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnRun: func(_ context.Context, e *domain.RunEvent) {
			c.Runs.WithLabelValues(string(e.Final), strconv.FormatBool(e.Accepted)).Inc()
			c.RunLength.Observe(float64(e.Length))
		},
		OnReset: func(_ context.Context, _ *domain.RunEvent) {
			c.Resets.Inc()
		},
	}
}
