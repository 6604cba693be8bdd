package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// The engine takes the run lock before a pipeline pass so that overlapping
// triggers, including across replicas, are skipped instead of stacking up.
type DistributedLocker interface {
	// TryLock attempts to acquire the lock for the given key without waiting.
	// It returns domain.ErrRunInProgress if another holder owns the key.
	// Returns an UnlockFunc that MUST be called to release the lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
