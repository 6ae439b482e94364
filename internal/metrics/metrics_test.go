package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/internal/runtime"
	"github.com/unanue/mostrador/pkg/domain"
)

func TestCollectorCountsExecutionsAndCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.NodeExecuted(domain.StepAuthenticate, domain.DecisionNeedInput, 5*time.Millisecond)
	c.NodeExecuted(domain.StepAuthenticate, domain.DecisionNeedInput, 3*time.Millisecond)
	c.NodeExecuted(domain.StepEscalate, domain.DecisionContinue, time.Millisecond)

	c.CycleFinished(runtime.OutcomeSuspended, false)
	c.CycleFinished(runtime.OutcomeTerminated, true)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.nodeExecutions.WithLabelValues("authenticate", "need_input")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.cycles.WithLabelValues("suspended")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.cycles.WithLabelValues("terminated")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.escalations))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "mostrador_node_duration_seconds")
}

func TestCollectorHooksObserveSessionAge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	hooks := c.Hooks()
	require.NotNil(t, hooks.OnTerminate)
	hooks.OnTerminate(context.Background(), &domain.SessionEvent{Escalated: true, Age: 90 * time.Second})
	hooks.OnTerminate(context.Background(), &domain.SessionEvent{Age: 45 * time.Second})

	count := testutil.CollectAndCount(c.sessionAge, "mostrador_session_duration_seconds")
	assert.Equal(t, 2, count, "one series per resolution label")
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) }, "double registration is a wiring bug")
}
