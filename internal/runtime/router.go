package runtime

import (
	"github.com/unanue/mostrador/pkg/domain"
)

// RouteKind is the router's verdict for the current state.
type RouteKind int

const (
	// RouteRun executes the node wired to the current step.
	RouteRun RouteKind = iota
	// RouteSuspend stops the engine until a new user message arrives.
	RouteSuspend
	// RouteTerminate ends the automated flow.
	RouteTerminate
)

// RouteDecision is the outcome of one routing pass. Err is set only for
// configuration faults (unknown step).
type RouteDecision struct {
	Kind RouteKind
	Node domain.Node
	Err  error
}

// Route is the single table-driven routing function. It inspects only the
// state's control fields; the step table is the one place where legal
// transitions are wired.
//
// Order matters: a raised escalation flag ends the flow before anything else,
// a pending input request suspends before any node may run.
func Route(state *domain.State, table map[domain.Step]domain.Node) RouteDecision {
	if state.Escalation.Flagged {
		return RouteDecision{Kind: RouteTerminate}
	}
	if state.AwaitingInput {
		return RouteDecision{Kind: RouteSuspend}
	}
	node, ok := table[state.CurrentStep]
	if !ok {
		return RouteDecision{
			Kind: RouteTerminate,
			Err:  &domain.UnknownStepError{Step: state.CurrentStep},
		}
	}
	return RouteDecision{Kind: RouteRun, Node: node}
}
