package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/pkg/domain"
)

func TestAuthenticateFirstContactGreets(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := domain.NewState("s1")
	st.AppendMessage("m1", domain.RoleUser, "")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionNeedInput, res.Decision)
	require.Len(t, res.Replies, 1)
	assert.Contains(t, res.Replies[0], "email corporativo")
	require.NotNil(t, res.Update.Interruption)
	assert.Equal(t, domain.StepAuthenticate, res.Update.Interruption.DestinationStep)
}

func TestAuthenticateWithEmailAndStore(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "mi email es juan.perez@eroski.es y trabajo en Eroski Bilbao")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)

	apply(st, res)
	assert.Equal(t, domain.StepClassify, st.CurrentStep)
	assert.True(t, st.Identity.Authenticated)
	assert.True(t, st.Identity.Complete())
	assert.Equal(t, "Juan Pérez", st.Identity.Name)
	assert.Equal(t, "juan.perez@eroski.es", st.Identity.Email)
	assert.Equal(t, "Eroski Bilbao", st.Identity.Store)
	assert.True(t, st.Identity.EmployeeNumberConfirmed)
}

func TestAuthenticateAsksForMissingStore(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "mi email es juan.perez@eroski.es")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionNeedInput, res.Decision)
	assert.Contains(t, res.Replies[0], "tienda")

	apply(st, res)
	assert.True(t, st.Identity.EmailConfirmed)
	assert.False(t, st.Identity.Authenticated)
	assert.Equal(t, "store_only", st.NextAction)

	st.AppendMessage("m2", domain.RoleUser, "Eroski Deusto")
	res, err = node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)

	apply(st, res)
	assert.True(t, st.Identity.Authenticated)
	assert.Equal(t, "Eroski Deusto", st.Identity.Store)
}

func TestAuthenticateUnknownEmailRetries(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "soy nadie@eroski.es de Eroski Bilbao")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionNeedInput, res.Decision)
	assert.Contains(t, res.Replies[0], "nadie@eroski.es")
	assert.True(t, res.Update.IncrementAttempts)
}

func TestAuthenticateEscalatesAfterBudget(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "no pienso decirte mi email")
	st.StepAttempts[domain.StepAuthenticate] = 2

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, res.Decision)
	require.NotNil(t, res.Update.Escalation)
	assert.Equal(t, "could not authenticate after 3 attempts", res.Update.Escalation.Reason)
	assert.False(t, res.Update.Escalation.Flagged)
}

func TestAuthenticateInactiveEmployeeEscalates(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "mi email es ana.baja@eroski.es, tienda es Getxo")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, res.Decision)
	assert.Contains(t, res.Update.Escalation.Reason, "inactive")
}

func TestAuthenticateSkipsWhenAlreadyDone(t *testing.T) {
	node := NewAuthenticate(testCaps(), 3)
	st := sessionAt(domain.StepAuthenticate, "otra cosa")
	st.Identity.Authenticated = true

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionContinue, res.Decision)
	assert.Equal(t, domain.StepClassify, res.Update.CurrentStep)
}
