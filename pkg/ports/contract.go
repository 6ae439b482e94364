package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/pkg/domain"
)

// RunStateStoreContract verifies that a StateStore implementation honors the
// interface contract. Adapter test suites call it against their store.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("SaveAndLoad", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.AppendMessage("m1", domain.RoleUser, "la balanza no imprime")
		state.Identity.Email = "juan.perez@eroski.es"
		state.Identity.EmailConfirmed = true
		state.StepAttempts[domain.StepAuthenticate] = 2

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, state.CurrentStep, loaded.CurrentStep)
		assert.Equal(t, "juan.perez@eroski.es", loaded.Identity.Email)
		require.Len(t, loaded.Transcript, 1)
		assert.Equal(t, "la balanza no imprime", loaded.Transcript[0].Content)
		assert.Equal(t, 2, loaded.StepAttempts[domain.StepAuthenticate])
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
