package domain

import (
	"time"
)

// Direction disambiguates how control re-enters a step after an interruption:
// forward-continue (the answer advances the flow) or backward-retry (the answer
// re-attempts the step that asked).
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionBack    Direction = "back"
)

// Interruption records that control left OriginStep to request user input and
// must come back to DestinationStep once the input arrives. The engine clears
// it when the destination step actually runs, so the origin's side effects are
// never replayed.
type Interruption struct {
	OriginStep      Step      `json:"origin_step"`
	DestinationStep Step      `json:"destination_step"`
	Direction       Direction `json:"direction"`
}

// Identity holds what we know about the employee, each datum paired with a
// confirmed flag. Completeness is derived, never stored.
type Identity struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	Store          string `json:"store,omitempty"`

	NameConfirmed           bool `json:"name_confirmed"`
	EmailConfirmed          bool `json:"email_confirmed"`
	EmployeeNumberConfirmed bool `json:"employee_number_confirmed"`
	StoreConfirmed          bool `json:"store_confirmed"`

	Authenticated bool `json:"authenticated"`
}

// Complete reports whether every required field has been confirmed.
// Name, email and store are required; the employee number is optional
// (not every store role has one at hand).
func (i Identity) Complete() bool {
	return i.NameConfirmed && i.EmailConfirmed && i.StoreConfirmed
}

// Resolution is the employee's verdict on a proposed solution.
type Resolution string

const (
	ResolutionUnset    Resolution = ""
	ResolutionAccepted Resolution = "accepted"
	ResolutionRejected Resolution = "rejected"
)

// Incident is the record being assembled over the conversation.
type Incident struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    int    `json:"priority,omitempty"`

	CategoryConfirmed    bool `json:"category_confirmed"`
	DescriptionConfirmed bool `json:"description_confirmed"`

	ResolutionAccepted Resolution `json:"resolution_accepted,omitempty"`

	// Code is the tracking code once the incident has been filed.
	Code string `json:"code,omitempty"`

	// Solution found in the knowledge base, if any.
	SolutionLabel string `json:"solution_label,omitempty"`
	SolutionText  string `json:"solution_text,omitempty"`
}

// Escalation marks the conversation as handed to a human supervisor.
// Reason may be recorded before Flagged is raised; once Flagged is true no
// further node executes.
type Escalation struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}

// ErrorKind classifies a failure recorded in ErrorInfo.
type ErrorKind string

const (
	ErrKindUserCorrectable       ErrorKind = "user_correctable"
	ErrKindLoopDetected          ErrorKind = "loop_detected"
	ErrKindUnknownStep           ErrorKind = "unknown_step"
	ErrKindCapabilityUnavailable ErrorKind = "capability_unavailable"
	ErrKindCapabilityTimeout     ErrorKind = "capability_timeout"
	ErrKindNotFound              ErrorKind = "not_found"
)

// ErrorInfo is the structured payload left behind by the last failing node.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Step    Step      `json:"step"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is the single mutable aggregate threaded through every step of a
// conversation. Nodes receive a snapshot and return a partial Update; they
// never mutate a State shared with the engine.
type State struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`

	// Routing and control.
	CurrentStep            Step   `json:"current_step"`
	AwaitingInput          bool   `json:"awaiting_input"`
	NextAction             string `json:"next_action,omitempty"`
	ExecutionCount         int    `json:"execution_count"`
	LastProcessedMessageID string `json:"last_processed_message_id,omitempty"`
	RoutingStack           []Step `json:"routing_stack,omitempty"`

	Interruption *Interruption `json:"interruption,omitempty"`

	// Transcript is append-only. Use AppendMessage; never reslice or reorder.
	Transcript []Message `json:"transcript"`

	Identity   Identity   `json:"identity"`
	Incident   Incident   `json:"incident"`
	Escalation Escalation `json:"escalation"`

	// Bookkeeping.
	Attempts     int          `json:"attempts"`
	StepAttempts map[Step]int `json:"step_attempts,omitempty"`
	FlowHistory  []Step       `json:"flow_history"`
	ErrorInfo    *ErrorInfo   `json:"error_info,omitempty"`
	Completed    bool         `json:"completed"`
}

// NewState creates a fresh session state positioned at the entry step.
func NewState(sessionID string) *State {
	return &State{
		SessionID:    sessionID,
		StartedAt:    time.Now().UTC(),
		CurrentStep:  EntryStep,
		StepAttempts: make(map[Step]int),
		FlowHistory:  []Step{EntryStep},
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Transcript = append([]Message(nil), s.Transcript...)
	next.FlowHistory = append([]Step(nil), s.FlowHistory...)
	next.RoutingStack = append([]Step(nil), s.RoutingStack...)
	next.StepAttempts = make(map[Step]int, len(s.StepAttempts))
	for k, v := range s.StepAttempts {
		next.StepAttempts[k] = v
	}
	if s.Interruption != nil {
		i := *s.Interruption
		next.Interruption = &i
	}
	if s.ErrorInfo != nil {
		e := *s.ErrorInfo
		next.ErrorInfo = &e
	}
	return &next
}

// AppendMessage appends a transcript entry, assigning the next sequence
// number. It returns the stored message.
func (s *State) AppendMessage(id string, role Role, content string) Message {
	msg := Message{
		ID:      id,
		Seq:     s.nextSeq(),
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	}
	s.Transcript = append(s.Transcript, msg)
	return msg
}

func (s *State) nextSeq() int {
	if len(s.Transcript) == 0 {
		return 1
	}
	return s.Transcript[len(s.Transcript)-1].Seq + 1
}

// LastUserMessage returns the content of the most recent user turn, or "".
func (s *State) LastUserMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleUser {
			return s.Transcript[i].Content
		}
	}
	return ""
}

// RepliesAfter returns the assistant messages recorded after the user message
// with the given id. It backs the idempotent-replay path: re-delivering an
// already processed message must yield the same outbound replies without
// re-running any node.
func (s *State) RepliesAfter(messageID string) []Message {
	idx := -1
	for i, m := range s.Transcript {
		if m.Role == RoleUser && m.ID == messageID {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	var replies []Message
	for _, m := range s.Transcript[idx+1:] {
		if m.Role == RoleAssistant {
			replies = append(replies, m)
		}
	}
	return replies
}

// CurrentStepAttempts returns the attempt counter for the active step.
func (s *State) CurrentStepAttempts() int {
	return s.StepAttempts[s.CurrentStep]
}

// Summary condenses the session for logs and the debug surface.
func (s *State) Summary() map[string]any {
	return map[string]any{
		"session_id":    s.SessionID,
		"current_step":  s.CurrentStep,
		"awaiting":      s.AwaitingInput,
		"authenticated": s.Identity.Authenticated,
		"identity_ok":   s.Identity.Complete(),
		"incident_type": s.Incident.Type,
		"incident_code": s.Incident.Code,
		"escalated":     s.Escalation.Flagged,
		"completed":     s.Completed,
		"messages":      len(s.Transcript),
		"flow_history":  s.FlowHistory,
		"attempts":      s.Attempts,
	}
}
