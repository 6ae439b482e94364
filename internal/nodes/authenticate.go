package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unanue/mostrador/pkg/domain"
)

const welcomeMessage = `¡Hola! Soy el asistente de incidencias de Eroski.

Para poder ayudarte necesito identificarte. Dime tu email corporativo y la
tienda en la que trabajas, por ejemplo:

  "mi email es nombre.apellido@eroski.es y trabajo en Eroski Bilbao"`

// Authenticate verifies the employee against the identity store before any
// other step runs. It extracts the corporate email (and optionally the store)
// from free text; the remaining identity fields come from the store record.
type Authenticate struct {
	caps   Capabilities
	budget int
}

func NewAuthenticate(caps Capabilities, budget int) *Authenticate {
	return &Authenticate{caps: caps, budget: budget}
}

func (n *Authenticate) Step() domain.Step { return domain.StepAuthenticate }

func (n *Authenticate) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	if st.Identity.Authenticated {
		return domain.TransitionTo(domain.StepClassify), nil
	}

	input := strings.TrimSpace(st.LastUserMessage())

	// First contact: greet and ask for credentials without spending an attempt.
	if !hasAssistantTurn(st) {
		return domain.WaitForInput(domain.StepAuthenticate, domain.StepAuthenticate,
			welcomeMessage, domain.DirectionBack), nil
	}

	// Follow-up turn asking only for the store, after a valid email.
	if st.NextAction == actionStoreOnly && st.Identity.EmailConfirmed {
		store := extractStore(input)
		if store == "" {
			store = trimStoreTail(input)
		}
		if store == "" {
			return n.retry(st, "No he entendido la tienda. Dime el nombre de tu tienda, por ejemplo \"Eroski Bilbao\"."), nil
		}
		return n.complete(st.Identity.Name, store), nil
	}

	email := extractEmail(input)
	if email == "" {
		return n.retry(st, "Necesito tu email corporativo para identificarte. Escríbelo completo, por ejemplo nombre.apellido@eroski.es."), nil
	}

	user, err := n.caps.Identity.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return n.retry(st, fmt.Sprintf("No encuentro ningún empleado con el email %s. Revisa que esté bien escrito e inténtalo de nuevo.", email)), nil
	}
	if err != nil {
		return domain.NodeResult{}, fmt.Errorf("identity lookup for %s: %w", email, err)
	}
	if !user.Active {
		return domain.EscalateWith(fmt.Sprintf("employee account %s is inactive", email)), nil
	}

	update := domain.IdentityUpdate{
		Name:           domain.Ptr(strings.TrimSpace(user.Name + " " + user.Surname)),
		Email:          domain.Ptr(user.Email),
		EmployeeNumber: domain.Ptr(user.EmployeeNumber),
		NameConfirmed:  domain.Ptr(true),
		EmailConfirmed: domain.Ptr(true),
	}
	if user.EmployeeNumber != "" {
		update.EmployeeNumberConfirmed = domain.Ptr(true)
	}

	store := extractStore(input)
	if store == "" {
		store = user.Store
	}
	if store == "" {
		return domain.WaitForInput(domain.StepAuthenticate, domain.StepAuthenticate,
			fmt.Sprintf("Gracias, %s. ¿En qué tienda trabajas?", user.Name),
			domain.DirectionForward,
			domain.WithNextAction(actionStoreOnly),
			domain.WithUpdate(func(u *domain.Update) { u.Identity = &update }),
		), nil
	}

	res := n.complete(*update.Name, store)
	merged := update
	merged.Store = res.Update.Identity.Store
	merged.StoreConfirmed = res.Update.Identity.StoreConfirmed
	merged.Authenticated = res.Update.Identity.Authenticated
	res.Update.Identity = &merged
	return res, nil
}

// complete confirms the store and hands control to classification.
func (n *Authenticate) complete(name, store string) domain.NodeResult {
	greeting := fmt.Sprintf("Perfecto, %s (%s). ¿En qué puedo ayudarte? Cuéntame qué problema tienes o qué necesitas consultar.",
		firstNonEmpty(name, "empleado/a"), store)
	return domain.TransitionTo(domain.StepClassify,
		domain.WithReply(greeting),
		domain.WithNextAction(""),
		domain.WithUpdate(func(u *domain.Update) {
			u.Identity = &domain.IdentityUpdate{
				Store:          domain.Ptr(store),
				StoreConfirmed: domain.Ptr(true),
				Authenticated:  domain.Ptr(true),
			}
		}),
	)
}

func (n *Authenticate) retry(st *domain.State, message string) domain.NodeResult {
	if st.CurrentStepAttempts()+1 >= n.budget {
		return domain.EscalateWith(fmt.Sprintf("could not authenticate after %d attempts", n.budget))
	}
	return domain.WaitForInput(domain.StepAuthenticate, domain.StepAuthenticate,
		message, domain.DirectionBack,
		domain.WithUpdate(func(u *domain.Update) { u.IncrementAttempts = true }),
	)
}

func hasAssistantTurn(st *domain.State) bool {
	for _, m := range st.Transcript {
		if m.Role == domain.RoleAssistant {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
