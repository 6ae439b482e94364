package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/pkg/domain"
)

func collectState(userMessage string) *domain.State {
	st := sessionAt(domain.StepCollectDetails, userMessage)
	st.Incident.Type = "balanza"
	st.Incident.Category = "balanza"
	st.Incident.Priority = 3
	st.Incident.Description = userMessage
	return st
}

func TestCollectAsksForCategoryConfirmation(t *testing.T) {
	node := NewCollectDetails(testCaps(), 3)
	st := collectState("la balanza no imprime etiquetas desde esta mañana")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionNeedInput, res.Decision)
	assert.Contains(t, res.Replies[0], "Balanza")

	apply(st, res)
	assert.Equal(t, "confirm_category", st.NextAction)
}

func TestCollectConfirmedTypeAndDescriptionMoveOn(t *testing.T) {
	node := NewCollectDetails(testCaps(), 3)
	st := collectState("la balanza no imprime etiquetas desde esta mañana")
	st.NextAction = "confirm_category"
	st.AppendMessage("m2", domain.RoleUser, "sí, es la balanza")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)

	apply(st, res)
	assert.Equal(t, domain.StepSearchSolution, st.CurrentStep)
	assert.True(t, st.Incident.CategoryConfirmed)
	assert.True(t, st.Incident.DescriptionConfirmed)
	assert.Empty(t, st.NextAction)
}

func TestCollectRejectedCategoryTriggersReclassifyDetour(t *testing.T) {
	node := NewCollectDetails(testCaps(), 3)
	st := collectState("no funciona bien")
	st.NextAction = "confirm_category"
	st.AppendMessage("m2", domain.RoleUser, "no, no es eso")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)
	assert.Equal(t, domain.StepCollectDetails, res.Update.PushReturn)

	apply(st, res)
	assert.Equal(t, domain.StepClassify, st.CurrentStep)
	assert.Equal(t, []domain.Step{domain.StepCollectDetails}, st.RoutingStack)
	assert.Equal(t, "reclassify", st.NextAction)
	assert.Empty(t, st.Incident.Type)
	assert.False(t, st.Incident.CategoryConfirmed)
}

func TestCollectAccumulatesShortDescriptions(t *testing.T) {
	node := NewCollectDetails(testCaps(), 3)
	st := collectState("va mal")
	st.Incident.CategoryConfirmed = true

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionNeedInput, res.Decision)
	apply(st, res)
	assert.Equal(t, "describe", st.NextAction)

	st.AppendMessage("m2", domain.RoleUser, "se queda congelada al imprimir la etiqueta")
	res, err = node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)

	apply(st, res)
	assert.Equal(t, domain.StepSearchSolution, st.CurrentStep)
	assert.Equal(t, "va mal se queda congelada al imprimir la etiqueta", st.Incident.Description)
	assert.True(t, st.Incident.DescriptionConfirmed)
}

func TestCollectEscalatesAfterBudget(t *testing.T) {
	node := NewCollectDetails(testCaps(), 3)
	st := collectState("va mal")
	st.Incident.CategoryConfirmed = true
	st.StepAttempts[domain.StepCollectDetails] = 2

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, res.Decision)
	assert.Equal(t, "could not gather enough incident detail after 3 attempts", res.Update.Escalation.Reason)
}
