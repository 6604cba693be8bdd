package tests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flipper"
	"github.com/aretw0/flipper/internal/runtime"
	"github.com/aretw0/flipper/pkg/adapters/file"
	"github.com/aretw0/flipper/pkg/adapters/git"
	"github.com/aretw0/flipper/pkg/adapters/process"
	"github.com/aretw0/flipper/pkg/domain"
)

// deterministicAgent writes the same artifact on every pass, so the
// second pass must come out as a noop. It also proves the run
// environment reached the child process.
const deterministicAgent = `#!/bin/sh
set -e
[ -n "$FLIPPER_RUN_ID" ] || { echo "missing run id" >&2; exit 3; }
[ -n "$GITHUB_TOKEN" ] || { echo "missing token" >&2; exit 4; }
mkdir -p data
printf 'top domain: agentflow.io\n' > data/portfolio.txt
printf '{"summary": "portfolio of 1 domains", "report_paths": ["data/portfolio.txt"]}\n'
`

// newEngine assembles the real pipeline around a git work tree: process
// agent, git publisher, file lock, with flipper state kept outside the
// work tree.
func newEngine(t *testing.T, repo, stateDir, script string, pub *git.Publisher) *flipper.Engine {
	t.Helper()
	eng, err := flipper.New(repo,
		flipper.WithAgent(process.New(process.Config{Command: "sh", Args: []string{script}}, nil)),
		flipper.WithPublisher(pub),
		flipper.WithStateDir(stateDir),
	)
	require.NoError(t, err)
	return eng
}

func TestPipelinePublishesThenGatesOnDiff(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	t.Setenv("GITHUB_TOKEN", "ghp_integration_fake")

	script := writeScript(t, deterministicAgent)
	eng := newEngine(t, repo, t.TempDir(), script, git.New(git.Config{DisablePush: true}, nil))
	ctx := context.Background()

	// First pass: the artifact is new, so it gets committed.
	run, err := eng.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, run.Status)
	assert.Equal(t, "portfolio of 1 domains", run.Summary)
	assert.Contains(t, run.ChangedFiles, "data/portfolio.txt")

	head := gitOut(t, repo, "rev-parse", "HEAD")
	assert.Equal(t, head, run.CommitHash)

	// The commit carries the fixed bot identity, never the local user.
	author := gitOut(t, repo, "log", "-1", "--format=%an <%ae>")
	assert.Equal(t, "flipper-bot <flipper-bot@users.noreply.github.com>", author)
	subject := gitOut(t, repo, "log", "-1", "--format=%s")
	assert.Contains(t, subject, "Domain flipping update")

	// Second pass: identical output, clean tree, nothing to publish.
	run, err = eng.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoop, run.Status)
	assert.Empty(t, run.CommitHash)
	assert.Equal(t, head, gitOut(t, repo, "rev-parse", "HEAD"))

	history, err := eng.Runs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestPipelineSkipsWhenRunLockHeld(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	t.Setenv("GITHUB_TOKEN", "ghp_integration_fake")

	state := t.TempDir()

	// Hold the run lock the way a second flipper process would.
	locker := file.NewLocker(filepath.Join(state, "locks"))
	unlock, err := locker.TryLock(context.Background(), runtime.LockKey, time.Minute)
	require.NoError(t, err)
	defer unlock(context.Background())

	script := writeScript(t, deterministicAgent)
	eng := newEngine(t, repo, state, script, git.New(git.Config{DisablePush: true}, nil))

	run, err := eng.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Nil(t, run)

	// A skipped pass leaves no trace in the history.
	history, err := eng.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPipelinePushFailureFailsRun(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	t.Setenv("GITHUB_TOKEN", "ghp_integration_fake")

	// Point origin at a path that does not exist; the commit will land
	// but the push must fail the run.
	gitOut(t, repo, "remote", "add", "origin", filepath.Join(t.TempDir(), "missing.git"))

	script := writeScript(t, deterministicAgent)
	eng := newEngine(t, repo, t.TempDir(), script, git.New(git.Config{}, nil))

	run, err := eng.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git push failed")
	require.NotNil(t, run)
	assert.Equal(t, domain.StatusFailed, run.Status)
	assert.Contains(t, run.Error, "push")
	assert.Empty(t, run.CommitHash)
}
