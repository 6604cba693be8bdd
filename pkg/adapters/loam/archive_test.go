package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flipper/pkg/domain"
)

func newTestArchive(t *testing.T) (string, *Archive) {
	t.Helper()
	dir := t.TempDir()
	archive, err := Open(dir)
	require.NoError(t, err, "failed to open archive")
	return dir, archive
}

func finishedRun() *domain.Run {
	run := domain.NewRun(domain.TriggerSchedule)
	run.Finish(domain.StatusPublished)
	run.CommitHash = "deadbeef"
	run.ChangedFiles = []string{"data/portfolio.json", "data/PORTFOLIO.md"}
	run.ReportPaths = []string{"data/PORTFOLIO.md"}
	run.Summary = "portfolio of 20 domains"
	return run
}

func TestArchiveRoundTrip(t *testing.T) {
	_, archive := newTestArchive(t)
	ctx := context.Background()

	run := finishedRun()
	report := "# Domain Flipping Portfolio\n\n20 acquisitions this pass."
	require.NoError(t, archive.Archive(ctx, run, report))

	loaded, body, err := archive.Read(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, loaded.ID)
	assert.Equal(t, domain.TriggerSchedule, loaded.Trigger)
	assert.Equal(t, domain.StatusPublished, loaded.Status)
	assert.Equal(t, "deadbeef", loaded.CommitHash)
	assert.Equal(t, run.ChangedFiles, loaded.ChangedFiles)
	assert.Equal(t, run.ReportPaths, loaded.ReportPaths)
	assert.Equal(t, run.Summary, loaded.Summary)
	assert.True(t, run.StartedAt.Equal(loaded.StartedAt), "started_at should survive the round trip")
	assert.True(t, run.FinishedAt.Equal(loaded.FinishedAt))
	assert.Contains(t, body, "20 acquisitions")
}

func TestArchiveWritesMarkdownFile(t *testing.T) {
	dir, archive := newTestArchive(t)
	ctx := context.Background()

	run := finishedRun()
	require.NoError(t, archive.Archive(ctx, run, "body"))

	data, err := os.ReadFile(filepath.Join(dir, run.ID+".md"))
	require.NoError(t, err, "archive should write one markdown file per run")
	assert.Contains(t, string(data), "status: published")
	assert.Contains(t, string(data), "body")
}

func TestArchiveOverwriteSameRun(t *testing.T) {
	_, archive := newTestArchive(t)
	ctx := context.Background()

	run := domain.NewRun(domain.TriggerManual)
	require.NoError(t, archive.Archive(ctx, run, "first pass"))

	run.Finish(domain.StatusNoop)
	run.Summary = "no changes"
	require.NoError(t, archive.Archive(ctx, run, "second pass"))

	loaded, body, err := archive.Read(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoop, loaded.Status)
	assert.Equal(t, "no changes", loaded.Summary)
	assert.Contains(t, body, "second pass")
}

func TestArchiveList(t *testing.T) {
	_, archive := newTestArchive(t)
	ctx := context.Background()

	first := domain.NewRun(domain.TriggerSchedule)
	second := domain.NewRun(domain.TriggerManual)
	require.NoError(t, archive.Archive(ctx, first, ""))
	require.NoError(t, archive.Archive(ctx, second, ""))

	ids, err := archive.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestArchiveFailedRunKeepsError(t *testing.T) {
	_, archive := newTestArchive(t)
	ctx := context.Background()

	run := domain.NewRun(domain.TriggerSchedule)
	run.Fail(context.DeadlineExceeded)
	require.NoError(t, archive.Archive(ctx, run, ""))

	loaded, _, err := archive.Read(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, loaded.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), loaded.Error)
}

func TestRunMetadataTimeFormat(t *testing.T) {
	run := domain.NewRun(domain.TriggerManual)
	meta := metadataFromRun(run)

	parsed, err := time.Parse(time.RFC3339Nano, meta.StartedAt)
	require.NoError(t, err)
	assert.True(t, run.StartedAt.Equal(parsed))
	assert.Empty(t, meta.FinishedAt, "unfinished run should have no finished_at")
}
