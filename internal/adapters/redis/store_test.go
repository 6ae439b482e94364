package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador/internal/adapters/redis"
	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisStoreContract(t *testing.T) {
	_, store := newTestStore(t)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStoreExpiry(t *testing.T) {
	mr, store := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1")))

	// Past the TTL the session key is gone.
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStoreCustomPrefix(t *testing.T) {
	mr, store := newTestStore(t, redis.WithPrefix("intake:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1")))
	assert.True(t, mr.Exists("intake:s1"))
}
