package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// Locker implements ports.DistributedLocker for a single process.
// The TTL still applies: an entry whose holder never released it stops
// blocking new runs once it lapses.
type Locker struct {
	mu    sync.Mutex
	locks map[string]lockEntry
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{
		locks: make(map[string]lockEntry),
	}
}

// TryLock attempts to acquire the lock for the given key.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.locks[key]; ok && time.Now().Before(entry.expiresAt) {
		return nil, fmt.Errorf("lock %q is held: %w", key, domain.ErrRunInProgress)
	}

	token := uuid.NewString()
	l.locks[key] = lockEntry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if entry, ok := l.locks[key]; ok && entry.token == token {
			delete(l.locks, key)
		}
		return nil
	}, nil
}
