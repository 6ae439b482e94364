package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/unanue/mostrador/internal/logging"
	"github.com/unanue/mostrador/pkg/domain"
)

// Outcome is how a resume cycle ended.
type Outcome string

const (
	// OutcomeSuspended means the engine is waiting for the next user message.
	OutcomeSuspended Outcome = "suspended"
	// OutcomeTerminated means the session is over.
	OutcomeTerminated Outcome = "terminated"
)

// DefaultExecutionCeiling bounds node executions within one resume cycle.
const DefaultExecutionCeiling = 25

// Observer receives engine measurements. Nil methods are not allowed; use a
// no-op implementation instead.
type Observer interface {
	NodeExecuted(step domain.Step, decision domain.Decision, d time.Duration)
	CycleFinished(outcome Outcome, escalated bool)
}

type nopObserver struct{}

func (nopObserver) NodeExecuted(domain.Step, domain.Decision, time.Duration) {}
func (nopObserver) CycleFinished(Outcome, bool)                              {}

// Engine drives the conversation state machine: it repeatedly asks the router
// where to go, runs one node, merge-applies its update, and stops at a
// suspend or terminate boundary. One resume cycle per external user message.
type Engine struct {
	table       map[domain.Step]domain.Node
	ceiling     int
	nodeTimeout time.Duration
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	observer    Observer
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithExecutionCeiling overrides the per-cycle node execution bound.
func WithExecutionCeiling(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.ceiling = n
		}
	}
}

// WithNodeTimeout bounds each node invocation. A timeout maps to an
// escalation with reason CapabilityTimeout, never to inconsistent state.
func WithNodeTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.nodeTimeout = d
	}
}

// WithObserver sets the metrics sink.
func WithObserver(obs Observer) EngineOption {
	return func(e *Engine) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// NewEngine builds an engine over the given node set. Each node's step must be
// unique; the resulting step table is the single source of truth for legal
// transitions.
func NewEngine(nodes []domain.Node, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		table:    make(map[domain.Step]domain.Node, len(nodes)),
		ceiling:  DefaultExecutionCeiling,
		logger:   logging.NewNop(),
		observer: nopObserver{},
	}
	for _, n := range nodes {
		if _, dup := e.table[n.Step()]; dup {
			return nil, fmt.Errorf("duplicate node for step %q", n.Step())
		}
		e.table[n.Step()] = n
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Steps returns the wired step identifiers, for introspection.
func (e *Engine) Steps() []domain.Step {
	steps := make([]domain.Step, 0, len(e.table))
	for s := range e.table {
		steps = append(steps, s)
	}
	return steps
}

// Resume feeds one user message into the state machine and runs it to the next
// suspend/terminate boundary. It returns the new state, the assistant messages
// produced this cycle, and how the cycle ended.
//
// Re-delivering a message whose ID is already recorded in the state is a
// no-op: the previously produced replies are returned and no node runs.
func (e *Engine) Resume(ctx context.Context, state *domain.State, msg domain.Message) (*domain.State, []domain.Message, Outcome, error) {
	if state == nil {
		return nil, nil, OutcomeTerminated, errors.New("nil state")
	}
	// Replay before the terminated check: the final reply of a session that
	// just ended must survive redelivery of the message that ended it.
	if msg.ID != "" && msg.ID == state.LastProcessedMessageID {
		e.logger.Debug("duplicate message, replaying recorded replies",
			"session_id", state.SessionID, "message_id", msg.ID)
		outcome := OutcomeTerminated
		if state.AwaitingInput {
			outcome = OutcomeSuspended
		}
		return state, state.RepliesAfter(msg.ID), outcome, nil
	}
	if state.Completed || state.Escalation.Flagged {
		return state, nil, OutcomeTerminated, nil
	}

	st := state.Clone()
	st.ExecutionCount = 0
	st.AwaitingInput = false
	st.LastProcessedMessageID = msg.ID
	st.AppendMessage(msg.ID, domain.RoleUser, msg.Content)

	var outbound []domain.Message
	for {
		decision := Route(st, e.table)
		switch decision.Kind {
		case RouteSuspend:
			e.emitSuspend(ctx, st)
			e.observer.CycleFinished(OutcomeSuspended, false)
			return st, outbound, OutcomeSuspended, nil

		case RouteTerminate:
			if decision.Err != nil {
				st.ErrorInfo = &domain.ErrorInfo{
					Kind:    domain.ErrKindUnknownStep,
					Step:    st.CurrentStep,
					Message: decision.Err.Error(),
					At:      time.Now().UTC(),
				}
				e.logger.Error("routing table has no node for step",
					"session_id", st.SessionID, "step", st.CurrentStep)
			}
			st.Completed = true
			e.emitTerminate(ctx, st)
			e.observer.CycleFinished(OutcomeTerminated, st.Escalation.Flagged)
			return st, outbound, OutcomeTerminated, decision.Err
		}

		if st.ExecutionCount >= e.ceiling {
			st.ErrorInfo = &domain.ErrorInfo{
				Kind:    domain.ErrKindLoopDetected,
				Step:    st.CurrentStep,
				Message: fmt.Sprintf("execution ceiling of %d reached", e.ceiling),
				At:      time.Now().UTC(),
			}
			st.Completed = true
			e.logger.Error("execution loop detected",
				"session_id", st.SessionID, "step", st.CurrentStep, "ceiling", e.ceiling)
			e.emitTerminate(ctx, st)
			e.observer.CycleFinished(OutcomeTerminated, false)
			return st, outbound, OutcomeTerminated, domain.ErrLoopDetected
		}
		st.ExecutionCount++

		// Control has returned to the interruption's destination; clear it so
		// the origin's side effects are never replayed.
		if st.Interruption != nil && st.Interruption.DestinationStep == st.CurrentStep {
			st.Interruption = nil
		}

		res, err := e.runNode(ctx, decision.Node, st)
		if err != nil {
			res = e.escalateOnFault(st, err)
		}

		res.Update.Apply(st)
		for _, text := range res.Replies {
			m := st.AppendMessage(uuid.NewString(), domain.RoleAssistant, text)
			outbound = append(outbound, m)
		}

		switch res.Decision {
		case domain.DecisionEscalate:
			if st.CurrentStep != domain.StepEscalate {
				domain.Update{
					CurrentStep:   domain.StepEscalate,
					AwaitingInput: domain.Ptr(false),
				}.Apply(st)
			}
		case domain.DecisionTerminate:
			st.Completed = true
			e.emitTerminate(ctx, st)
			e.observer.CycleFinished(OutcomeTerminated, st.Escalation.Flagged)
			return st, outbound, OutcomeTerminated, nil
		}
	}
}

// runNode executes one node against a private snapshot, bounded by the
// configured node timeout.
func (e *Engine) runNode(ctx context.Context, node domain.Node, st *domain.State) (domain.NodeResult, error) {
	runCtx := ctx
	if e.nodeTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.nodeTimeout)
		defer cancel()
	}

	started := time.Now()
	e.emitNodeEnter(runCtx, st, node.Step())

	res, err := node.Execute(runCtx, st.Clone())

	elapsed := time.Since(started)
	e.emitNodeLeave(runCtx, st, node.Step(), res.Decision, elapsed)
	e.observer.NodeExecuted(node.Step(), res.Decision, elapsed)
	e.logger.Debug("node executed",
		"session_id", st.SessionID,
		"step", node.Step(),
		"decision", res.Decision,
		"duration", elapsed,
		"err", err,
	)
	return res, err
}

// escalateOnFault converts an infrastructure fault into an escalation result,
// distinguishing timeouts from plain unavailability in the reason text.
func (e *Engine) escalateOnFault(st *domain.State, err error) domain.NodeResult {
	kind := domain.ErrKindCapabilityUnavailable
	reason := fmt.Sprintf("CapabilityUnavailable: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.ErrKindCapabilityTimeout
		reason = "CapabilityTimeout: node execution exceeded its deadline"
	}
	e.logger.Warn("node failed, escalating",
		"session_id", st.SessionID, "step", st.CurrentStep, "kind", kind, "err", err)

	res := domain.EscalateWith(reason)
	res.Update.ErrorInfo = &domain.ErrorInfo{
		Kind:    kind,
		Step:    st.CurrentStep,
		Message: err.Error(),
		At:      time.Now().UTC(),
	}
	return res
}

func (e *Engine) emitNodeEnter(ctx context.Context, st *domain.State, step domain.Step) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		Timestamp: time.Now().UTC(),
		SessionID: st.SessionID,
		Step:      step,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, st *domain.State, step domain.Step, decision domain.Decision, d time.Duration) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		Timestamp: time.Now().UTC(),
		SessionID: st.SessionID,
		Step:      step,
		Decision:  decision,
		Duration:  d,
	})
}

func (e *Engine) emitSuspend(ctx context.Context, st *domain.State) {
	if e.hooks.OnSuspend == nil {
		return
	}
	e.hooks.OnSuspend(ctx, &domain.SessionEvent{
		Timestamp: time.Now().UTC(),
		SessionID: st.SessionID,
		Step:      st.CurrentStep,
	})
}

func (e *Engine) emitTerminate(ctx context.Context, st *domain.State) {
	if e.hooks.OnTerminate == nil {
		return
	}
	e.hooks.OnTerminate(ctx, &domain.SessionEvent{
		Timestamp: time.Now().UTC(),
		SessionID: st.SessionID,
		Step:      st.CurrentStep,
		Escalated: st.Escalation.Flagged,
		Reason:    st.Escalation.Reason,
		Age:       time.Since(st.StartedAt),
	})
}
