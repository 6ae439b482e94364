package domain

// ResultOption tweaks a NodeResult built by one of the helper constructors.
type ResultOption func(*NodeResult)

// WithUpdate merges extra field updates into the result.
func WithUpdate(apply func(*Update)) ResultOption {
	return func(r *NodeResult) {
		apply(&r.Update)
	}
}

// WithReply appends an assistant message to the result.
func WithReply(message string) ResultOption {
	return func(r *NodeResult) {
		r.Replies = append(r.Replies, message)
	}
}

// WithNextAction sets the hint consumed by the next node to run.
func WithNextAction(action string) ResultOption {
	return func(r *NodeResult) {
		r.Update.NextAction = Ptr(action)
	}
}

// TransitionTo hands control to the next step without suspending. The per-step
// attempt counter of the target is reset and any pending interruption hint is
// left for the engine to clear on arrival.
func TransitionTo(next Step, opts ...ResultOption) NodeResult {
	res := NodeResult{
		Decision: DecisionContinue,
		Update: Update{
			CurrentStep:   next,
			AwaitingInput: Ptr(false),
			ResetAttempts: true,
		},
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

// WaitForInput emits an assistant message, suspends the engine, and records an
// interruption so that when the user answers, control resumes at next rather
// than replaying origin's side effects.
func WaitForInput(origin, next Step, message string, direction Direction, opts ...ResultOption) NodeResult {
	res := NodeResult{
		Decision: DecisionNeedInput,
		Replies:  []string{message},
		Update: Update{
			CurrentStep:   next,
			AwaitingInput: Ptr(true),
			Interruption: &Interruption{
				OriginStep:      origin,
				DestinationStep: next,
				Direction:       direction,
			},
		},
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

// EscalateWith abandons the automated flow for a human hand-off. The engine
// routes to the escalation step; the reason is recorded before the flag is
// raised there.
func EscalateWith(reason string, opts ...ResultOption) NodeResult {
	res := NodeResult{
		Decision: DecisionEscalate,
		Update: Update{
			Escalation: &Escalation{Flagged: false, Reason: reason},
		},
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

// TerminateWith ends the session with a final message.
func TerminateWith(message string, opts ...ResultOption) NodeResult {
	res := NodeResult{
		Decision: DecisionTerminate,
		Update: Update{
			Completed:     Ptr(true),
			AwaitingInput: Ptr(false),
		},
	}
	if message != "" {
		res.Replies = []string{message}
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}
