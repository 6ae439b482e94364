package domain

import (
	"context"
	"time"
)

// NodeEvent describes one node execution for observability hooks.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Step      Step      `json:"step"`
	Decision  Decision  `json:"decision,omitempty"`
	Duration  time.Duration
}

// SessionEvent describes a resume-cycle boundary. Age is the time since the
// session started; it is only set on terminate events.
type SessionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	Step      Step          `json:"step"`
	Escalated bool          `json:"escalated,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Age       time.Duration `json:"age,omitempty"`
}

// LifecycleHooks defines optional callbacks for engine observability.
// Nil members are skipped.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnSuspend   func(context.Context, *SessionEvent)
	OnTerminate func(context.Context, *SessionEvent)
}
