package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/unanue/mostrador/pkg/domain"
)

// SearchSolution looks the incident up in the solution book and proposes the
// best match. No match means nobody in the book has seen this before, so the
// conversation escalates instead of guessing.
type SearchSolution struct {
	caps Capabilities
}

func NewSearchSolution(caps Capabilities) *SearchSolution {
	return &SearchSolution{caps: caps}
}

func (n *SearchSolution) Step() domain.Step { return domain.StepSearchSolution }

func (n *SearchSolution) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	sol, err := n.caps.Solutions.FindBestSolution(ctx, st.Incident.Category, st.Incident.Description)
	if errors.Is(err, domain.ErrNoMatch) {
		return domain.EscalateWith(fmt.Sprintf("no documented solution for category %q", st.Incident.Category)), nil
	}
	if err != nil {
		return domain.NodeResult{}, fmt.Errorf("solution lookup: %w", err)
	}

	n.caps.logger().Info("solution proposed",
		"session_id", st.SessionID,
		"category", st.Incident.Category,
		"problem", sol.ProblemLabel,
	)

	reply := fmt.Sprintf("He encontrado una posible solución (%s):\n\n%s\nPrueba estos pasos y dime cómo ha ido.",
		sol.ProblemLabel, sol.SolutionText)

	return domain.TransitionTo(domain.StepVerify,
		domain.WithReply(reply),
		domain.WithUpdate(func(u *domain.Update) {
			u.Incident = &domain.IncidentUpdate{
				SolutionLabel: domain.Ptr(sol.ProblemLabel),
				SolutionText:  domain.Ptr(sol.SolutionText),
			}
		}),
	), nil
}
