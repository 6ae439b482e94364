package nodes

import (
	"context"
	"fmt"

	"github.com/unanue/mostrador/internal/llm"
	"github.com/unanue/mostrador/pkg/domain"
)

// Verify asks the employee whether the proposed solution worked. A clear yes
// closes the incident through finalize; a clear no hands it to a supervisor.
// Ambiguous answers are re-asked within a short budget.
type Verify struct {
	caps   Capabilities
	budget int
}

func NewVerify(caps Capabilities, budget int) *Verify {
	return &Verify{caps: caps, budget: budget}
}

func (n *Verify) Step() domain.Step { return domain.StepVerify }

func (n *Verify) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	switch st.Incident.ResolutionAccepted {
	case domain.ResolutionAccepted:
		return domain.TransitionTo(domain.StepFinalize), nil
	case domain.ResolutionRejected:
		return domain.EscalateWith("proposed solution did not resolve the issue"), nil
	}

	if st.NextAction != actionConfirmResolution {
		return domain.WaitForInput(domain.StepVerify, domain.StepVerify,
			"¿Se ha resuelto el problema con esos pasos? (sí/no)",
			domain.DirectionForward,
			domain.WithNextAction(actionConfirmResolution),
		), nil
	}

	yes, ok := llm.ParseYesNo(st.LastUserMessage())
	if !ok {
		if st.CurrentStepAttempts()+1 >= n.budget {
			return domain.EscalateWith(fmt.Sprintf("could not confirm resolution after %d attempts", n.budget)), nil
		}
		return domain.WaitForInput(domain.StepVerify, domain.StepVerify,
			"Perdona, no te he entendido. ¿El problema sigue ocurriendo o ya funciona? Responde sí (resuelto) o no (sigue igual).",
			domain.DirectionBack,
			domain.WithUpdate(func(u *domain.Update) { u.IncrementAttempts = true }),
		), nil
	}

	verdict := domain.ResolutionRejected
	if yes {
		verdict = domain.ResolutionAccepted
	}
	res := n.routeVerdict(yes)
	res.Update.NextAction = domain.Ptr("")
	res.Update.Incident = &domain.IncidentUpdate{ResolutionAccepted: domain.Ptr(verdict)}
	return res, nil
}

func (n *Verify) routeVerdict(yes bool) domain.NodeResult {
	if yes {
		return domain.TransitionTo(domain.StepFinalize)
	}
	return domain.EscalateWith("proposed solution did not resolve the issue")
}
