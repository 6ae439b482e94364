package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/unanue/mostrador/pkg/domain"
)

// generalCategory is the knowledge-base category holding answers to general
// questions that do not open an incident.
const generalCategory = "consultas"

// SearchKnowledge answers general questions from the knowledge base. A hit
// closes the session through finalize; a miss hands off to a supervisor, since
// leaving a question unanswered is worse than opening a ticket for it.
type SearchKnowledge struct {
	caps Capabilities
}

func NewSearchKnowledge(caps Capabilities) *SearchKnowledge {
	return &SearchKnowledge{caps: caps}
}

func (n *SearchKnowledge) Step() domain.Step { return domain.StepSearchKnowledge }

func (n *SearchKnowledge) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	question := st.LastUserMessage()

	sol, err := n.caps.Solutions.FindBestSolution(ctx, generalCategory, question)
	if errors.Is(err, domain.ErrNoMatch) {
		return domain.EscalateWith("general question without a documented answer"), nil
	}
	if err != nil {
		return domain.NodeResult{}, fmt.Errorf("knowledge lookup: %w", err)
	}

	return domain.TransitionTo(domain.StepFinalize,
		domain.WithReply(sol.SolutionText),
	), nil
}
