package nodes

import (
	"context"
	"fmt"

	"github.com/unanue/mostrador/internal/kb"
	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

type fakeIdentity struct {
	users map[string]ports.UserRecord
	err   error
}

func (f *fakeIdentity) FindUserByEmail(_ context.Context, email string) (*ports.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type fakeIncidents struct {
	created    []ports.IncidentRecord
	updates    map[string]ports.IncidentRecord
	transcript map[string][]domain.Message
	createErr  error
	updateErr  error
}

func (f *fakeIncidents) CreateIncident(_ context.Context, rec ports.IncidentRecord) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, rec)
	return fmt.Sprintf("ER%04d", 4820+len(f.created)), nil
}

func (f *fakeIncidents) UpdateIncident(_ context.Context, code string, partial ports.IncidentRecord) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = make(map[string]ports.IncidentRecord)
	}
	f.updates[code] = partial
	return nil
}

func (f *fakeIncidents) AppendMessages(_ context.Context, code string, msgs []domain.Message) error {
	if f.transcript == nil {
		f.transcript = make(map[string][]domain.Message)
	}
	f.transcript[code] = append(f.transcript[code], msgs...)
	return nil
}

type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) Complete(context.Context, string, map[string]string) (string, error) {
	return f.response, f.err
}

func testCaps() Capabilities {
	base := kb.Default()
	return Capabilities{
		Identity: &fakeIdentity{users: map[string]ports.UserRecord{
			"juan.perez@eroski.es": {
				ID: "u1", Name: "Juan", Surname: "Pérez",
				Email: "juan.perez@eroski.es", EmployeeNumber: "12345",
				Role: "cajero", Store: "", Active: true,
			},
			"ana.baja@eroski.es": {
				ID: "u2", Name: "Ana", Surname: "Baja",
				Email: "ana.baja@eroski.es", Active: false,
			},
		}},
		Incidents: &fakeIncidents{},
		Solutions: base,
		Catalog:   base,
	}
}

// sessionAt builds a mid-conversation state positioned at step, with one
// greeting already sent and the given user message as the latest turn.
func sessionAt(step domain.Step, userMessage string) *domain.State {
	st := domain.NewState("s-test")
	st.AppendMessage("a0", domain.RoleAssistant, "hola")
	if userMessage != "" {
		st.AppendMessage("m1", domain.RoleUser, userMessage)
	}
	domain.Update{CurrentStep: step}.Apply(st)
	return st
}

func apply(st *domain.State, res domain.NodeResult) *domain.State {
	res.Update.Apply(st)
	return st
}
