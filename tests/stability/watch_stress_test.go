package stability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/logging"
)

// TestWatcherSurvivesRapidRewrites hammers the config file with edits,
// broken yaml included, and expects the watcher to end up applying the
// last valid interval without dying in between.
func TestWatcherSurvivesRapidRewrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  every: 15m\n"), 0644))

	var mu sync.Mutex
	var applied []time.Duration
	apply := func(cfg *config.Config) {
		mu.Lock()
		applied = append(applied, cfg.Schedule.Every.Std())
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := config.NewWatcher(path, apply, logging.NewNop())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the directory watch a moment to register.
	time.Sleep(200 * time.Millisecond)

	// Phase 1: a broken edit. The reload must be skipped, not fatal.
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  every: [broken\n"), 0644))
	time.Sleep(800 * time.Millisecond)

	mu.Lock()
	brokenApplies := len(applied)
	mu.Unlock()
	assert.Zero(t, brokenApplies, "broken yaml must not reach the apply callback")

	// Phase 2: a burst of valid rewrites. Debouncing may collapse them,
	// but the final value has to come through.
	for i := 1; i <= 20; i++ {
		body := fmt.Sprintf("schedule:\n  every: %dm\n", i)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  every: 45m\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(applied)
		var last time.Duration
		if n > 0 {
			last = applied[n-1]
		}
		mu.Unlock()

		if n > 0 && last == 45*time.Minute {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("watcher never applied the final interval, saw %v", applied)
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
