package nodes

import (
	"context"
	"fmt"

	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

// Escalate files the incident with the incident store and raises the
// escalation flag. It runs at most once per session: the router terminates the
// conversation as soon as the flag is up, so nothing executes after it.
type Escalate struct {
	caps Capabilities
}

func NewEscalate(caps Capabilities) *Escalate {
	return &Escalate{caps: caps}
}

func (n *Escalate) Step() domain.Step { return domain.StepEscalate }

func (n *Escalate) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	reason := st.Escalation.Reason
	if reason == "" {
		reason = "manual escalation"
	}

	rec := incidentRecord(st)
	rec.Escalated = true

	var code string
	if n.caps.Incidents != nil {
		var err error
		code, err = n.caps.Incidents.CreateIncident(ctx, rec)
		if err != nil {
			// The hand-off still happens; supervisors get the session id instead
			// of a tracking code.
			n.caps.logger().Error("incident filing failed", "session_id", st.SessionID, "error", err)
			code = ""
		} else {
			// The ticket is filed before the reason is attached, so a partial
			// failure still leaves a trackable incident behind.
			if err := n.caps.Incidents.UpdateIncident(ctx, code, ports.IncidentRecord{Reason: reason}); err != nil {
				n.caps.logger().Warn("could not attach escalation reason", "code", code, "error", err)
			}
			if err := n.caps.Incidents.AppendMessages(ctx, code, st.Transcript); err != nil {
				n.caps.logger().Warn("could not attach transcript to incident", "code", code, "error", err)
			}
		}
	}

	n.caps.logger().Info("session escalated",
		"session_id", st.SessionID,
		"reason", reason,
		"code", code,
	)

	message := "He pasado tu caso a un supervisor de soporte. Se pondrán en contacto contigo lo antes posible."
	if code != "" {
		message = fmt.Sprintf("He pasado tu caso a un supervisor de soporte con el código de seguimiento %s. Guárdalo para consultar el estado. Se pondrán en contacto contigo lo antes posible.", code)
	}

	update := domain.Update{
		Escalation: &domain.Escalation{Flagged: true, Reason: reason},
	}
	if code != "" {
		update.Incident = &domain.IncidentUpdate{Code: domain.Ptr(code)}
	}
	return domain.NodeResult{
		Decision: domain.DecisionContinue,
		Replies:  []string{message},
		Update:   update,
	}, nil
}
