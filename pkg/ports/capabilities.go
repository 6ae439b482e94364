package ports

import (
	"context"

	"github.com/unanue/mostrador/pkg/domain"
)

// UserRecord is an employee entry in the identity store.
type UserRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	EmployeeNumber string `json:"employee_number"`
	Role           string `json:"role"`
	Department     string `json:"department"`
	Store          string `json:"store"`
	Active         bool   `json:"active"`
}

// IdentityStore looks up employees. Lookups that miss return
// domain.ErrUserNotFound; inactive employees are returned with Active false so
// callers can distinguish the two outcomes.
type IdentityStore interface {
	FindUserByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// IncidentRecord is the payload filed with the incident store.
type IncidentRecord struct {
	SessionID   string `json:"session_id"`
	Employee    string `json:"employee"`
	Email       string `json:"email"`
	Store       string `json:"store"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Escalated   bool   `json:"escalated"`
	Reason      string `json:"reason,omitempty"`
}

// IncidentStore files and updates incident tickets. Create returns the
// tracking code: a two-letter prefix followed by four digits, unique within
// the store (implementations regenerate on collision).
type IncidentStore interface {
	CreateIncident(ctx context.Context, rec IncidentRecord) (code string, err error)
	UpdateIncident(ctx context.Context, code string, partial IncidentRecord) error
	AppendMessages(ctx context.Context, code string, messages []domain.Message) error
}

// Solution is a knowledge-base hit.
type Solution struct {
	ProblemLabel string `json:"problem_label"`
	SolutionText string `json:"solution_text"`
}

// KnowledgeBase matches a free-text problem description against the known
// problems of a category. Returns domain.ErrNoMatch when nothing overlaps.
type KnowledgeBase interface {
	FindBestSolution(ctx context.Context, category, freeText string) (*Solution, error)
}

// LanguageModel is a fallible, possibly slow, pure-text completion function.
// No structured schema is guaranteed in the response; callers parse
// defensively.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string, variables map[string]string) (string, error)
}
