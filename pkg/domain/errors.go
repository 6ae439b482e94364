package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned by identity lookups that miss.
var ErrUserNotFound = errors.New("user not found")

// ErrIncidentNotFound is returned when updating an incident that does not exist.
var ErrIncidentNotFound = errors.New("incident not found")

// ErrNoMatch is returned by the knowledge base when no solution fits.
var ErrNoMatch = errors.New("no matching solution")

// ErrLoopDetected is returned when a resume cycle exceeds the execution ceiling.
var ErrLoopDetected = errors.New("execution loop detected")

// UnknownStepError signals a routing table with no node for the current step.
// It is a configuration fault, not a user error.
type UnknownStepError struct {
	Step Step
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("no node registered for step %q", e.Step)
}
