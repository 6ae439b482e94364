package nodes

import (
	"context"
	"fmt"

	"github.com/unanue/mostrador/pkg/domain"
)

// Finalize closes the session on the happy paths: a verified resolution or an
// answered question. Resolved incidents are still filed (non-escalated) so the
// support team keeps statistics on self-served fixes.
type Finalize struct {
	caps Capabilities
}

func NewFinalize(caps Capabilities) *Finalize {
	return &Finalize{caps: caps}
}

func (n *Finalize) Step() domain.Step { return domain.StepFinalize }

func (n *Finalize) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	if st.Incident.ResolutionAccepted == domain.ResolutionAccepted && st.Incident.Code == "" && n.caps.Incidents != nil {
		code, err := n.caps.Incidents.CreateIncident(ctx, incidentRecord(st))
		if err != nil {
			n.caps.logger().Warn("could not record resolved incident", "session_id", st.SessionID, "error", err)
		} else {
			return domain.TerminateWith(
				fmt.Sprintf("¡Genial! He registrado la incidencia como resuelta con el código %s. Si vuelve a ocurrir, indícanos ese código. ¡Hasta pronto!", code),
				withIncidentCode(code),
			), nil
		}
	}

	message := "Espero haberte ayudado. Si necesitas algo más, vuelve a escribirme. ¡Hasta pronto!"
	if st.Incident.ResolutionAccepted == domain.ResolutionAccepted {
		message = "¡Genial, me alegro de que esté resuelto! Si vuelve a ocurrir, escríbeme de nuevo. ¡Hasta pronto!"
	}
	return domain.TerminateWith(message), nil
}

func withIncidentCode(code string) domain.ResultOption {
	return domain.WithUpdate(func(u *domain.Update) {
		u.Incident = &domain.IncidentUpdate{Code: domain.Ptr(code)}
	})
}
