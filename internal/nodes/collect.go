package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/unanue/mostrador/internal/llm"
	"github.com/unanue/mostrador/pkg/domain"
)

// minDescriptionLen is the shortest description considered searchable.
const minDescriptionLen = 20

// CollectDetails completes the incident record: confirms the classified
// equipment type with the employee and accumulates a usable description. A
// rejected type sends control back to classification with a return marker so
// the flow comes back here afterwards.
type CollectDetails struct {
	caps   Capabilities
	budget int
}

func NewCollectDetails(caps Capabilities, budget int) *CollectDetails {
	return &CollectDetails{caps: caps, budget: budget}
}

func (n *CollectDetails) Step() domain.Step { return domain.StepCollectDetails }

func (n *CollectDetails) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	input := strings.TrimSpace(st.LastUserMessage())

	description := st.Incident.Description
	switch st.NextAction {
	case actionConfirmCategory:
		yes, ok := llm.ParseYesNo(input)
		if !ok {
			return n.retry(st, "Responde sí o no: ¿el problema es del equipo que te he indicado?"), nil
		}
		if !yes {
			// Wrong guess: re-classify and come back.
			return domain.TransitionTo(domain.StepClassify,
				domain.WithNextAction(actionReclassify),
				domain.WithUpdate(func(u *domain.Update) {
					u.PushReturn = domain.StepCollectDetails
					u.Incident = &domain.IncidentUpdate{
						Type:              domain.Ptr(""),
						Category:          domain.Ptr(""),
						CategoryConfirmed: domain.Ptr(false),
					}
				}),
				domain.WithReply("Entendido, vamos a verlo de nuevo. ¿De qué equipo se trata y qué le pasa?"),
			), nil
		}
		return n.afterConfirm(st, description, true), nil

	case actionDescribe:
		if input != "" {
			description = strings.TrimSpace(description + " " + input)
		}
	}

	if st.Incident.Type == "" {
		return n.retry(st, "¿Qué equipo está dando problemas? Por ejemplo: balanza, TPV, impresora, red o scanner."), nil
	}

	if !st.Incident.CategoryConfirmed {
		it, _ := n.caps.Catalog.Type(st.Incident.Type)
		return domain.WaitForInput(domain.StepCollectDetails, domain.StepCollectDetails,
			fmt.Sprintf("Por lo que me cuentas, el problema es de: %s. ¿Es correcto? (sí/no)", it.Name),
			domain.DirectionForward,
			domain.WithNextAction(actionConfirmCategory),
		), nil
	}

	return n.afterConfirm(st, description, false), nil
}

// afterConfirm checks the description once the type is settled.
func (n *CollectDetails) afterConfirm(st *domain.State, description string, justConfirmed bool) domain.NodeResult {
	if len(description) < minDescriptionLen {
		prompt := "Necesito algo más de detalle para buscar una solución. ¿Qué estabas haciendo cuando falló y qué mensaje o comportamiento ves exactamente?"
		res := n.retry(st, prompt)
		if res.Decision == domain.DecisionNeedInput {
			res.Update.NextAction = domain.Ptr(actionDescribe)
			if justConfirmed || description != st.Incident.Description {
				mergeIncident(&res.Update, &domain.IncidentUpdate{
					Description:       domain.Ptr(description),
					CategoryConfirmed: domain.Ptr(true),
				})
			}
		}
		return res
	}

	return domain.TransitionTo(domain.StepSearchSolution,
		domain.WithNextAction(""),
		domain.WithUpdate(func(u *domain.Update) {
			u.Incident = &domain.IncidentUpdate{
				Description:          domain.Ptr(description),
				CategoryConfirmed:    domain.Ptr(true),
				DescriptionConfirmed: domain.Ptr(true),
			}
		}),
	)
}

func (n *CollectDetails) retry(st *domain.State, message string) domain.NodeResult {
	if st.CurrentStepAttempts()+1 >= n.budget {
		return domain.EscalateWith(fmt.Sprintf("could not gather enough incident detail after %d attempts", n.budget))
	}
	return domain.WaitForInput(domain.StepCollectDetails, domain.StepCollectDetails,
		message, domain.DirectionBack,
		domain.WithUpdate(func(u *domain.Update) { u.IncrementAttempts = true }),
	)
}

func mergeIncident(u *domain.Update, inc *domain.IncidentUpdate) {
	if u.Incident == nil {
		u.Incident = inc
		return
	}
	if inc.Description != nil {
		u.Incident.Description = inc.Description
	}
	if inc.CategoryConfirmed != nil {
		u.Incident.CategoryConfirmed = inc.CategoryConfirmed
	}
}
