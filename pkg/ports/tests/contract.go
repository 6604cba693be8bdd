package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract is a reusable test suite that verifies an adapter complies
// with ports.RunStore.
func RunStoreContract(t *testing.T, store ports.RunStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		run := domain.NewRun(domain.TriggerManual)
		run.Summary = "contract check"
		defer func() { _ = store.Delete(ctx, run.ID) }()

		err := store.Save(ctx, run)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, domain.TriggerManual, loaded.Trigger)
		assert.Equal(t, "contract check", loaded.Summary)
	})

	t.Run("Overwrite by ID", func(t *testing.T) {
		run := domain.NewRun(domain.TriggerSchedule)
		defer func() { _ = store.Delete(ctx, run.ID) }()
		require.NoError(t, store.Save(ctx, run))

		run.Finish(domain.StatusPublished)
		run.CommitHash = "abc123"
		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublished, loaded.Status)
		assert.Equal(t, "abc123", loaded.CommitHash)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-run")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List Recent First", func(t *testing.T) {
		first := domain.NewRun(domain.TriggerSchedule)
		first.StartedAt = time.Now().UTC().Add(-2 * time.Hour)
		second := domain.NewRun(domain.TriggerSchedule)
		second.StartedAt = time.Now().UTC().Add(-1 * time.Hour)

		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		defer func() {
			_ = store.Delete(ctx, first.ID)
			_ = store.Delete(ctx, second.ID)
		}()

		runs, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, second.ID, runs[0].ID, "most recent run should come first")
		assert.Equal(t, first.ID, runs[1].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		run := domain.NewRun(domain.TriggerManual)
		require.NoError(t, store.Save(ctx, run))

		require.NoError(t, store.Delete(ctx, run.ID), "Delete should not return error")

		_, err := store.Load(ctx, run.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})
}

// DistributedLockerContract verifies that a DistributedLocker implementation
// enforces single-flight semantics.
func DistributedLockerContract(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()
	key := "contract-lock"

	t.Run("Acquire and Release", func(t *testing.T) {
		unlock, err := locker.TryLock(ctx, key, time.Minute)
		require.NoError(t, err, "first TryLock should succeed")
		require.NotNil(t, unlock)

		require.NoError(t, unlock(ctx))
	})

	t.Run("Conflict is ErrRunInProgress", func(t *testing.T) {
		unlock, err := locker.TryLock(ctx, key, time.Minute)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		_, err = locker.TryLock(ctx, key, time.Minute)
		assert.ErrorIs(t, err, domain.ErrRunInProgress, "second TryLock must be rejected, not queued")
	})

	t.Run("Reacquire After Release", func(t *testing.T) {
		unlock, err := locker.TryLock(ctx, key, time.Minute)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		again, err := locker.TryLock(ctx, key, time.Minute)
		require.NoError(t, err, "released lock should be acquirable again")
		require.NoError(t, again(ctx))
	})

	t.Run("Keys are Independent", func(t *testing.T) {
		unlock, err := locker.TryLock(ctx, key+"-a", time.Minute)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		other, err := locker.TryLock(ctx, key+"-b", time.Minute)
		require.NoError(t, err, "different keys should not conflict")
		require.NoError(t, other(ctx))
	})
}
