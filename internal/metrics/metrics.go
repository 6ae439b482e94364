package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unanue/mostrador/internal/runtime"
	"github.com/unanue/mostrador/pkg/domain"
)

// Collector implements runtime.Observer on top of Prometheus.
type Collector struct {
	nodeExecutions *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	cycles         *prometheus.CounterVec
	escalations    prometheus.Counter
	sessionAge     *prometheus.HistogramVec
}

var _ runtime.Observer = (*Collector)(nil)

// NewCollector builds the engine collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		nodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mostrador_node_executions_total",
				Help: "Node executions by step and decision.",
			},
			[]string{"step", "decision"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mostrador_node_duration_seconds",
				Help:    "Node execution duration by step.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mostrador_resume_cycles_total",
				Help: "Resume cycles by outcome.",
			},
			[]string{"outcome"},
		),
		escalations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mostrador_escalations_total",
				Help: "Sessions handed to a human supervisor.",
			},
		),
		sessionAge: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mostrador_session_duration_seconds",
				Help:    "Time from session start to termination, by resolution.",
				Buckets: []float64{15, 30, 60, 120, 300, 600, 1800, 3600},
			},
			[]string{"resolution"},
		),
	}
	reg.MustRegister(c.nodeExecutions, c.nodeDuration, c.cycles, c.escalations, c.sessionAge)
	return c
}

// Hooks returns lifecycle hooks that feed the session-duration histogram.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTerminate: func(_ context.Context, ev *domain.SessionEvent) {
			resolution := "resolved"
			if ev.Escalated {
				resolution = "escalated"
			}
			c.sessionAge.WithLabelValues(resolution).Observe(ev.Age.Seconds())
		},
	}
}

// NodeExecuted records one node run.
func (c *Collector) NodeExecuted(step domain.Step, decision domain.Decision, d time.Duration) {
	c.nodeExecutions.WithLabelValues(string(step), string(decision)).Inc()
	c.nodeDuration.WithLabelValues(string(step)).Observe(d.Seconds())
}

// CycleFinished records one resume cycle boundary.
func (c *Collector) CycleFinished(outcome runtime.Outcome, escalated bool) {
	c.cycles.WithLabelValues(string(outcome)).Inc()
	if escalated {
		c.escalations.Inc()
	}
}
