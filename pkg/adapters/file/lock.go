// Package file implements the run lock as an exclusive-create lock
// file. It is the fallback for single-node deployments without redis:
// two flipper processes on the same host still cannot overlap a run.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// lockRecord is the lock file payload. The token guards the release
// and the deadline lets a later process reclaim a lock whose holder
// crashed without unlocking.
type lockRecord struct {
	Token      string    `json:"token"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Locker implements ports.DistributedLocker on the local filesystem.
type Locker struct {
	// Dir is where lock files live. Empty defaults to ".flipper".
	Dir string
}

// NewLocker creates a file locker rooted at dir.
func NewLocker(dir string) *Locker {
	if dir == "" {
		dir = ".flipper"
	}
	return &Locker{Dir: dir}
}

func (l *Locker) path(key string) string {
	return filepath.Join(l.Dir, key+".lock")
}

// TryLock attempts to create the lock file with O_EXCL.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure lock directory: %w", err)
	}

	path := l.path(key)
	record := lockRecord{
		Token:      uuid.NewString(),
		PID:        os.Getpid(),
		AcquiredAt: time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}

	if err := l.create(path, record); err != nil {
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		// Somebody holds the file. If their deadline passed, reclaim
		// it once; a second EEXIST means we lost the race to another
		// reclaimer and the run is theirs.
		if !l.expired(path) {
			return nil, fmt.Errorf("lock %q is held: %w", key, domain.ErrRunInProgress)
		}
		_ = os.Remove(path)
		if err := l.create(path, record); err != nil {
			if errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("lock %q is held: %w", key, domain.ErrRunInProgress)
			}
			return nil, err
		}
	}

	return func(ctx context.Context) error {
		return l.release(path, record.Token)
	}, nil
}

// create writes the lock file, failing with os.ErrExist when held.
func (l *Locker) create(path string, record lockRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to marshal lock record: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return f.Close()
}

// expired reports whether the lock file's deadline has passed.
// An unreadable or corrupt file counts as expired: a half-written
// lock should never wedge the scheduler forever.
func (l *Locker) expired(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		// Vanished between the create attempt and here; retry the create.
		return os.IsNotExist(err)
	}
	var record lockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return true
	}
	return time.Now().UTC().After(record.ExpiresAt)
}

// release removes the lock file only if the token still matches.
func (l *Locker) release(path, token string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	var record lockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Corrupt lock file; removing it is the only way forward.
		return os.Remove(path)
	}
	if record.Token != token {
		return nil
	}
	return os.Remove(path)
}
