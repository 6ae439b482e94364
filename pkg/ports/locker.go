package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas. The load,
// resume and store around each external turn must be a single-writer
// read-modify-write per session; the locker provides that guarantee when more
// than one process serves the same session store.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired, the context is canceled,
	// or the TTL expires. The returned UnlockFunc MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
