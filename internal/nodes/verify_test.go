package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/pkg/domain"
)

func verifyState(answer string) *domain.State {
	st := sessionAt(domain.StepVerify, answer)
	st.Incident.Type = "balanza"
	st.Incident.Category = "balanza"
	st.Incident.SolutionLabel = "no imprime etiquetas"
	st.Incident.SolutionText = "pasos"
	return st
}

func TestVerifyAsksForConfirmationFirst(t *testing.T) {
	node := NewVerify(testCaps(), 2)
	st := verifyState("")

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionNeedInput, res.Decision)
	assert.Contains(t, res.Replies[0], "resuelto")

	apply(st, res)
	assert.Equal(t, "confirm_resolution", st.NextAction)
	assert.True(t, st.AwaitingInput)
}

func TestVerifyAcceptedGoesToFinalize(t *testing.T) {
	node := NewVerify(testCaps(), 2)
	st := verifyState("sí, ya funciona, gracias")
	st.NextAction = "confirm_resolution"

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionContinue, res.Decision)

	apply(st, res)
	assert.Equal(t, domain.StepFinalize, st.CurrentStep)
	assert.Equal(t, domain.ResolutionAccepted, st.Incident.ResolutionAccepted)
	assert.Empty(t, st.NextAction)
}

func TestVerifyRejectedEscalates(t *testing.T) {
	node := NewVerify(testCaps(), 2)
	st := verifyState("no, sigue igual")
	st.NextAction = "confirm_resolution"

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, res.Decision)
	assert.Equal(t, "proposed solution did not resolve the issue", res.Update.Escalation.Reason)

	apply(st, res)
	assert.Equal(t, domain.ResolutionRejected, st.Incident.ResolutionAccepted)
}

func TestVerifyAmbiguousAnswersEscalateAfterBudget(t *testing.T) {
	node := NewVerify(testCaps(), 2)
	st := verifyState("pues a ratos")
	st.NextAction = "confirm_resolution"

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, domain.DecisionNeedInput, res.Decision)
	apply(st, res)

	st.AppendMessage("m2", domain.RoleUser, "depende del momento")
	res, err = node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, res.Decision)
	assert.Equal(t, "could not confirm resolution after 2 attempts", res.Update.Escalation.Reason)
}

func TestVerifyShortcutsOnRecordedVerdict(t *testing.T) {
	node := NewVerify(testCaps(), 2)
	st := verifyState("")
	st.Incident.ResolutionAccepted = domain.ResolutionAccepted

	res, err := node.Execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.StepFinalize, res.Update.CurrentStep)
}
