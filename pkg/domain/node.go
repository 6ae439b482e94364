package domain

import "context"

// Decision is the control token a node hands back to the engine.
type Decision string

const (
	// DecisionContinue lets the router pick the next step immediately.
	DecisionContinue Decision = "continue"
	// DecisionNeedInput suspends the engine until a new user message arrives.
	DecisionNeedInput Decision = "need_input"
	// DecisionEscalate hands the conversation to the escalation step.
	DecisionEscalate Decision = "escalate"
	// DecisionTerminate ends the session.
	DecisionTerminate Decision = "terminate"
)

// Node is one unit of conversation logic, executed for exactly one step per
// invocation. Implementations read the state snapshot and return a NodeResult;
// they must never mutate the snapshot they were given.
type Node interface {
	// Step returns the step identifier this node is wired to.
	Step() Step

	// Execute performs one logical unit of work. An error return is reserved
	// for infrastructure faults; user-correctable situations are expressed
	// through the result's decision and update.
	Execute(ctx context.Context, state *State) (NodeResult, error)
}

// NodeResult is what a node execution produces: a partial state update, the
// assistant replies to append to the transcript, and a control decision.
type NodeResult struct {
	Update   Update
	Replies  []string
	Decision Decision
}

// Update is a partial state delta, merge-applied by the engine over a copy of
// the input state. Zero/nil fields leave the corresponding state untouched; the
// transcript is deliberately not reachable from here.
type Update struct {
	CurrentStep   Step    // "" leaves the step unchanged
	AwaitingInput *bool
	NextAction    *string

	Identity   *IdentityUpdate
	Incident   *IncidentUpdate
	Escalation *Escalation
	ErrorInfo  *ErrorInfo

	Interruption      *Interruption
	ClearInterruption bool

	IncrementAttempts bool
	ResetAttempts     bool

	// PushReturn pushes a step onto the routing stack before a detour;
	// PopReturn routes to the top of the stack instead of CurrentStep.
	PushReturn Step
	PopReturn  bool

	Completed *bool
}

// IdentityUpdate merges employee fields into the state. Nil pointers leave the
// current value in place.
type IdentityUpdate struct {
	Name           *string
	Email          *string
	EmployeeNumber *string
	Store          *string

	NameConfirmed           *bool
	EmailConfirmed          *bool
	EmployeeNumberConfirmed *bool
	StoreConfirmed          *bool

	Authenticated *bool
}

// IncidentUpdate merges incident fields into the state.
type IncidentUpdate struct {
	Type        *string
	Description *string
	Category    *string
	Priority    *int

	CategoryConfirmed    *bool
	DescriptionConfirmed *bool

	ResolutionAccepted *Resolution

	Code          *string
	SolutionLabel *string
	SolutionText  *string
}

// Apply merges the update into the given state. The state is expected to be a
// private copy; Apply mutates it in place. Step changes are recorded in the
// flow history and reset the per-step attempt counter unless the update says
// otherwise.
func (u Update) Apply(s *State) {
	if u.PopReturn && len(s.RoutingStack) > 0 {
		top := s.RoutingStack[len(s.RoutingStack)-1]
		s.RoutingStack = s.RoutingStack[:len(s.RoutingStack)-1]
		s.setStep(top)
	} else if u.CurrentStep != "" && u.CurrentStep != s.CurrentStep {
		s.setStep(u.CurrentStep)
	}
	if u.PushReturn != "" {
		s.RoutingStack = append(s.RoutingStack, u.PushReturn)
	}

	if u.AwaitingInput != nil {
		s.AwaitingInput = *u.AwaitingInput
	}
	if u.NextAction != nil {
		s.NextAction = *u.NextAction
	}
	if u.Identity != nil {
		u.Identity.apply(&s.Identity)
	}
	if u.Incident != nil {
		u.Incident.apply(&s.Incident)
	}
	if u.Escalation != nil {
		s.Escalation = *u.Escalation
	}
	if u.ErrorInfo != nil {
		info := *u.ErrorInfo
		s.ErrorInfo = &info
	}
	if u.Interruption != nil {
		i := *u.Interruption
		s.Interruption = &i
	}
	if u.ClearInterruption {
		s.Interruption = nil
	}
	if u.IncrementAttempts {
		s.Attempts++
		s.StepAttempts[s.CurrentStep]++
	}
	if u.ResetAttempts {
		s.StepAttempts[s.CurrentStep] = 0
	}
	if u.Completed != nil {
		s.Completed = *u.Completed
	}
}

func (s *State) setStep(next Step) {
	s.CurrentStep = next
	s.FlowHistory = append(s.FlowHistory, next)
	if _, ok := s.StepAttempts[next]; !ok {
		s.StepAttempts[next] = 0
	}
}

func (u *IdentityUpdate) apply(id *Identity) {
	setStr(&id.Name, u.Name)
	setStr(&id.Email, u.Email)
	setStr(&id.EmployeeNumber, u.EmployeeNumber)
	setStr(&id.Store, u.Store)
	setBool(&id.NameConfirmed, u.NameConfirmed)
	setBool(&id.EmailConfirmed, u.EmailConfirmed)
	setBool(&id.EmployeeNumberConfirmed, u.EmployeeNumberConfirmed)
	setBool(&id.StoreConfirmed, u.StoreConfirmed)
	setBool(&id.Authenticated, u.Authenticated)
}

func (u *IncidentUpdate) apply(in *Incident) {
	setStr(&in.Type, u.Type)
	setStr(&in.Description, u.Description)
	setStr(&in.Category, u.Category)
	if u.Priority != nil {
		in.Priority = *u.Priority
	}
	setBool(&in.CategoryConfirmed, u.CategoryConfirmed)
	setBool(&in.DescriptionConfirmed, u.DescriptionConfirmed)
	if u.ResolutionAccepted != nil {
		in.ResolutionAccepted = *u.ResolutionAccepted
	}
	setStr(&in.Code, u.Code)
	setStr(&in.SolutionLabel, u.SolutionLabel)
	setStr(&in.SolutionText, u.SolutionText)
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Ptr is a small helper for building updates.
func Ptr[T any](v T) *T { return &v }
