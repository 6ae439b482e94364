package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateStartsAtEntryStep(t *testing.T) {
	st := NewState("s-1")

	assert.Equal(t, "s-1", st.SessionID)
	assert.Equal(t, EntryStep, st.CurrentStep)
	assert.Equal(t, []Step{EntryStep}, st.FlowHistory)
	assert.False(t, st.AwaitingInput)
	assert.False(t, st.Completed)
	assert.NotNil(t, st.StepAttempts)
}

func TestAppendMessageSequencesMonotonically(t *testing.T) {
	st := NewState("s")

	first := st.AppendMessage("u1", RoleUser, "hola")
	second := st.AppendMessage("a1", RoleAssistant, "buenas")
	third := st.AppendMessage("u2", RoleUser, "la balanza falla")

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, 3, third.Seq)
	assert.Len(t, st.Transcript, 3)
	assert.False(t, third.At.IsZero())
}

func TestLastUserMessage(t *testing.T) {
	st := NewState("s")
	assert.Empty(t, st.LastUserMessage())

	st.AppendMessage("u1", RoleUser, "hola")
	st.AppendMessage("a1", RoleAssistant, "¿tu email?")
	assert.Equal(t, "hola", st.LastUserMessage())

	st.AppendMessage("u2", RoleUser, "juan.perez@eroski.es")
	assert.Equal(t, "juan.perez@eroski.es", st.LastUserMessage())
}

func TestRepliesAfter(t *testing.T) {
	st := NewState("s")
	st.AppendMessage("u1", RoleUser, "hola")
	st.AppendMessage("a1", RoleAssistant, "bienvenido")
	st.AppendMessage("u2", RoleUser, "la impresora no va")
	st.AppendMessage("a2", RoleAssistant, "entiendo")
	st.AppendMessage("a3", RoleAssistant, "¿desde cuándo?")

	replies := st.RepliesAfter("u2")
	require.Len(t, replies, 2)
	assert.Equal(t, "entiendo", replies[0].Content)
	assert.Equal(t, "¿desde cuándo?", replies[1].Content)

	assert.Len(t, st.RepliesAfter("u1"), 3, "replies to a later message included")
	assert.Nil(t, st.RepliesAfter("never-seen"))
}

func TestCloneIsDeep(t *testing.T) {
	st := NewState("s")
	st.AppendMessage("u1", RoleUser, "hola")
	st.RoutingStack = []Step{StepCollectDetails}
	st.StepAttempts[StepAuthenticate] = 2
	st.Interruption = &Interruption{OriginStep: StepAuthenticate, DestinationStep: StepAuthenticate, Direction: DirectionBack}
	st.ErrorInfo = &ErrorInfo{Kind: ErrKindUserCorrectable, Step: StepAuthenticate}

	cp := st.Clone()
	cp.AppendMessage("u2", RoleUser, "más texto")
	cp.RoutingStack = append(cp.RoutingStack, StepClassify)
	cp.StepAttempts[StepAuthenticate] = 9
	cp.Interruption.Direction = DirectionForward
	cp.ErrorInfo.Kind = ErrKindLoopDetected
	cp.FlowHistory = append(cp.FlowHistory, StepVerify)

	assert.Len(t, st.Transcript, 1)
	assert.Equal(t, []Step{StepCollectDetails}, st.RoutingStack)
	assert.Equal(t, 2, st.StepAttempts[StepAuthenticate])
	assert.Equal(t, DirectionBack, st.Interruption.Direction)
	assert.Equal(t, ErrKindUserCorrectable, st.ErrorInfo.Kind)
	assert.Equal(t, []Step{EntryStep}, st.FlowHistory)
}

func TestCloneNil(t *testing.T) {
	var st *State
	assert.Nil(t, st.Clone())
}

func TestIdentityComplete(t *testing.T) {
	cases := []struct {
		name string
		id   Identity
		want bool
	}{
		{"empty", Identity{}, false},
		{"all confirmed", Identity{NameConfirmed: true, EmailConfirmed: true, StoreConfirmed: true}, true},
		{"employee number not required", Identity{
			NameConfirmed: true, EmailConfirmed: true, StoreConfirmed: true,
			EmployeeNumberConfirmed: false,
		}, true},
		{"store missing", Identity{NameConfirmed: true, EmailConfirmed: true}, false},
		{"values without confirmation do not count", Identity{
			Name: "Juan", Email: "juan@eroski.es", Store: "Eroski Bilbao",
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.id.Complete())
		})
	}
}

func TestSummary(t *testing.T) {
	st := NewState("s-7")
	st.Identity.Authenticated = true
	st.Incident.Type = "balanza"
	st.AppendMessage("u1", RoleUser, "hola")

	sum := st.Summary()
	assert.Equal(t, "s-7", sum["session_id"])
	assert.Equal(t, EntryStep, sum["current_step"])
	assert.Equal(t, true, sum["authenticated"])
	assert.Equal(t, "balanza", sum["incident_type"])
	assert.Equal(t, 1, sum["messages"])
}
