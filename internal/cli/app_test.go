package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flipper/pkg/domain"
)

// writeAppConfig drops a config file into its own temp dir and returns
// its path.
func writeAppConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildAppBuiltinDefaults(t *testing.T) {
	state := t.TempDir()
	path := writeAppConfig(t, fmt.Sprintf("workspace:\n  dir: %s\nstate_dir: %s\n", t.TempDir(), state))

	app, err := BuildApp(AppOptions{ConfigPath: path})
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.Config.Agent.Builtin)
	assert.NotNil(t, app.Engine)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Archive)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.Logger)

	// The archive lands under the state dir, outside the work tree.
	assert.DirExists(t, filepath.Join(state, "archive"))
}

func TestBuildAppExternalAgent(t *testing.T) {
	path := writeAppConfig(t, fmt.Sprintf(`state_dir: %s
agent:
  command: python3
  args: ["agent.py", "--once"]
`, t.TempDir()))

	app, err := BuildApp(AppOptions{ConfigPath: path})
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.Config.Agent.Builtin)
	assert.NotNil(t, app.Engine)
}

func TestBuildAppMissingExplicitConfig(t *testing.T) {
	_, err := BuildApp(AppOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}

func TestBuildAppRejectsBadScoutParams(t *testing.T) {
	path := writeAppConfig(t, fmt.Sprintf(`state_dir: %s
agent:
  params:
    queries: 42
`, t.TempDir()))

	_, err := BuildApp(AppOptions{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent.params")
}

func TestBuildAppNamedTrendSources(t *testing.T) {
	path := writeAppConfig(t, fmt.Sprintf(`state_dir: %s
agent:
  params:
    sources: ["github-trending"]
`, t.TempDir()))

	app, err := BuildApp(AppOptions{ConfigPath: path})
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.Config.Agent.Builtin)
}

func TestBuildAppUnknownTrendSource(t *testing.T) {
	path := writeAppConfig(t, fmt.Sprintf(`state_dir: %s
agent:
  params:
    sources: ["moonphase"]
`, t.TempDir()))

	_, err := BuildApp(AppOptions{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trend source not found: moonphase")
	assert.Contains(t, err.Error(), "github-search")
}

func TestBuildAppRedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)
	path := writeAppConfig(t, fmt.Sprintf(`state_dir: %s
redis:
  addr: %s
`, t.TempDir(), srv.Addr()))

	app, err := BuildApp(AppOptions{ConfigPath: path})
	require.NoError(t, err)
	defer app.Close()

	// A record saved through the app store must land in redis with
	// credentials scrubbed.
	ctx := context.Background()
	run := domain.NewRun(domain.TriggerManual)
	run.Finish(domain.StatusFailed)
	run.Error = "push rejected for token ghp_abc123XYZ"
	require.NoError(t, app.Store.Save(ctx, run))

	loaded, err := app.Store.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, loaded.Status)
	assert.NotContains(t, loaded.Error, "ghp_abc123XYZ")
	assert.Contains(t, loaded.Error, "***")

	require.NotEmpty(t, srv.Keys(), "run record should live in redis")
}
