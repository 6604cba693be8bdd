package runtime_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/flipper/internal/logging"
	"github.com/aretw0/flipper/internal/runtime"
	"github.com/aretw0/flipper/pkg/adapters/memory"
	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// pipelineHarness implements provisioner, agent and publisher at once,
// recording the stage order and failing on demand.
type pipelineHarness struct {
	seq []string

	provisionErr error
	agentErr     error
	agentSilent  bool
	publishErr   error
	publish      *ports.PublishResult
}

func (h *pipelineHarness) Provision(ctx context.Context, run *domain.Run) (*ports.Workspace, error) {
	h.seq = append(h.seq, "provision")
	if h.provisionErr != nil {
		return nil, h.provisionErr
	}
	return &ports.Workspace{Dir: "/tmp/flipper-ws", Branch: "main"}, nil
}

func (h *pipelineHarness) Execute(ctx context.Context, ws *ports.Workspace) (*ports.AgentResult, error) {
	h.seq = append(h.seq, "agent")
	if h.agentErr != nil {
		return nil, h.agentErr
	}
	if h.agentSilent {
		return nil, nil
	}
	return &ports.AgentResult{
		Summary:     "portfolio of 4 domains",
		ReportPaths: []string{"data/PORTFOLIO.md", "data/portfolio.json"},
	}, nil
}

func (h *pipelineHarness) Publish(ctx context.Context, ws *ports.Workspace) (*ports.PublishResult, error) {
	h.seq = append(h.seq, "publish")
	if h.publishErr != nil {
		return nil, h.publishErr
	}
	if h.publish != nil {
		return h.publish, nil
	}
	return &ports.PublishResult{Committed: false}, nil
}

func newTestEngine(t *testing.T, h *pipelineHarness, hooks domain.LifecycleHooks) (*runtime.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	eng, err := runtime.NewEngine(runtime.Config{
		Provisioner: h,
		Agent:       h,
		Publisher:   h,
		Store:       store,
		Locker:      memory.NewLocker(),
		Hooks:       hooks,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return eng, store
}

func TestExecutePublishedRun(t *testing.T) {
	h := &pipelineHarness{
		publish: &ports.PublishResult{
			Committed:    true,
			CommitHash:   "deadbeef",
			ChangedFiles: []string{"data/PORTFOLIO.md", "data/portfolio.json"},
		},
	}
	eng, store := newTestEngine(t, h, domain.LifecycleHooks{})

	run, err := eng.Execute(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if run.Status != domain.StatusPublished {
		t.Errorf("status = %s, want published", run.Status)
	}
	if run.CommitHash != "deadbeef" {
		t.Errorf("commit hash = %q, want deadbeef", run.CommitHash)
	}
	if len(run.ChangedFiles) != 2 {
		t.Errorf("changed files = %v, want 2 entries", run.ChangedFiles)
	}
	if run.Summary != "portfolio of 4 domains" {
		t.Errorf("summary = %q", run.Summary)
	}
	if run.FinishedAt.IsZero() {
		t.Error("terminal run should have a finish time")
	}

	want := []string{"provision", "agent", "publish"}
	if !slices.Equal(h.seq, want) {
		t.Errorf("stage sequence = %v, want %v", h.seq, want)
	}

	stored, err := store.Load(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if stored.Status != domain.StatusPublished {
		t.Errorf("stored status = %s, want published", stored.Status)
	}
}

func TestExecuteCleanTreeIsNoop(t *testing.T) {
	h := &pipelineHarness{} // publisher reports nothing committed
	eng, _ := newTestEngine(t, h, domain.LifecycleHooks{})

	run, err := eng.Execute(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if run.Status != domain.StatusNoop {
		t.Errorf("status = %s, want noop", run.Status)
	}
	if run.CommitHash != "" {
		t.Errorf("noop run must not carry a commit hash, got %q", run.CommitHash)
	}
}

func TestAgentFailureSkipsPublish(t *testing.T) {
	h := &pipelineHarness{agentErr: errors.New("crawl blew up")}
	eng, store := newTestEngine(t, h, domain.LifecycleHooks{})

	run, err := eng.Execute(context.Background(), domain.TriggerManual)
	if err == nil {
		t.Fatal("expected agent failure to surface")
	}
	if want := []string{"provision", "agent"}; !slices.Equal(h.seq, want) {
		t.Errorf("stage sequence = %v, want %v (publisher must not run)", h.seq, want)
	}
	if run.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if run.Error == "" || !errors.Is(err, h.agentErr) {
		t.Errorf("failure cause not preserved: record=%q err=%v", run.Error, err)
	}

	stored, loadErr := store.Load(context.Background(), run.ID)
	if loadErr != nil {
		t.Fatalf("failed run should still be recorded: %v", loadErr)
	}
	if stored.Status != domain.StatusFailed {
		t.Errorf("stored status = %s, want failed", stored.Status)
	}
}

func TestProvisionFailureSkipsAgent(t *testing.T) {
	h := &pipelineHarness{provisionErr: errors.New("git missing")}
	eng, _ := newTestEngine(t, h, domain.LifecycleHooks{})

	run, err := eng.Execute(context.Background(), domain.TriggerSchedule)
	if err == nil {
		t.Fatal("expected provision failure to surface")
	}
	if want := []string{"provision"}; !slices.Equal(h.seq, want) {
		t.Errorf("stage sequence = %v, want %v (agent must not run)", h.seq, want)
	}
	if run.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}

func TestAgentWithoutResultFails(t *testing.T) {
	h := &pipelineHarness{agentSilent: true}
	eng, _ := newTestEngine(t, h, domain.LifecycleHooks{})

	run, err := eng.Execute(context.Background(), domain.TriggerManual)
	if !errors.Is(err, domain.ErrAgentResultMissing) {
		t.Fatalf("err = %v, want ErrAgentResultMissing", err)
	}
	if run.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if slices.Contains(h.seq, "publish") {
		t.Error("publisher must not run for a silent agent")
	}
}

func TestTriggersRunIdenticalSequence(t *testing.T) {
	manual := &pipelineHarness{}
	engM, _ := newTestEngine(t, manual, domain.LifecycleHooks{})
	if _, err := engM.Execute(context.Background(), domain.TriggerManual); err != nil {
		t.Fatalf("manual run failed: %v", err)
	}

	scheduled := &pipelineHarness{}
	engS, _ := newTestEngine(t, scheduled, domain.LifecycleHooks{})
	if _, err := engS.Execute(context.Background(), domain.TriggerSchedule); err != nil {
		t.Fatalf("scheduled run failed: %v", err)
	}

	if !slices.Equal(manual.seq, scheduled.seq) {
		t.Errorf("triggers diverged: manual=%v scheduled=%v", manual.seq, scheduled.seq)
	}
}

func TestLockContentionSkipsRun(t *testing.T) {
	h := &pipelineHarness{}
	store := memory.NewStore()
	locker := memory.NewLocker()

	// Occupy the pipeline key before the engine gets a chance.
	unlock, err := locker.TryLock(context.Background(), runtime.LockKey, time.Minute)
	if err != nil {
		t.Fatalf("pre-lock failed: %v", err)
	}
	defer func() { _ = unlock(context.Background()) }()

	eng, err := runtime.NewEngine(runtime.Config{
		Provisioner: h,
		Agent:       h,
		Publisher:   h,
		Store:       store,
		Locker:      locker,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	run, execErr := eng.Execute(context.Background(), domain.TriggerSchedule)
	if !errors.Is(execErr, domain.ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", execErr)
	}
	if run != nil {
		t.Errorf("skipped trigger must not create a run record, got %+v", run)
	}
	if len(h.seq) != 0 {
		t.Errorf("no stage may run while the lock is held, got %v", h.seq)
	}

	runs, _ := store.List(context.Background(), 0)
	if len(runs) != 0 {
		t.Errorf("store should be empty after a skipped trigger, got %d records", len(runs))
	}
}

func TestLockReleasedAfterRun(t *testing.T) {
	h := &pipelineHarness{}
	locker := memory.NewLocker()
	eng, err := runtime.NewEngine(runtime.Config{
		Provisioner: h,
		Agent:       h,
		Publisher:   h,
		Store:       memory.NewStore(),
		Locker:      locker,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if _, err := eng.Execute(context.Background(), domain.TriggerManual); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// The key must be free again immediately after the pass.
	unlock, err := locker.TryLock(context.Background(), runtime.LockKey, time.Minute)
	if err != nil {
		t.Fatalf("lock still held after run: %v", err)
	}
	_ = unlock(context.Background())
}

func TestLifecycleHooksFire(t *testing.T) {
	var events []string
	var stageEnds []*domain.StageEvent

	hooks := domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			events = append(events, "run_start")
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			events = append(events, "run_finish:"+string(e.Status))
		},
		OnStageStart: func(ctx context.Context, e *domain.StageEvent) {
			events = append(events, "start:"+string(e.Stage))
		},
		OnStageEnd: func(ctx context.Context, e *domain.StageEvent) {
			events = append(events, "end:"+string(e.Stage))
			stageEnds = append(stageEnds, e)
		},
		OnPublish: func(ctx context.Context, e *domain.PublishEvent) {
			events = append(events, "publish:"+e.CommitHash)
		},
	}

	h := &pipelineHarness{
		publish: &ports.PublishResult{Committed: true, CommitHash: "cafe12", ChangedFiles: []string{"data/PORTFOLIO.md"}},
	}
	eng, _ := newTestEngine(t, h, hooks)

	if _, err := eng.Execute(context.Background(), domain.TriggerSchedule); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{
		"run_start",
		"start:provision", "end:provision",
		"start:agent", "end:agent",
		"start:publish", "end:publish",
		"publish:cafe12",
		"run_finish:published",
	}
	if !slices.Equal(events, want) {
		t.Errorf("event order = %v, want %v", events, want)
	}

	for _, e := range stageEnds {
		if e.Error != "" {
			t.Errorf("stage %s ended with unexpected error %q", e.Stage, e.Error)
		}
	}
}

func TestStageEndCarriesError(t *testing.T) {
	var failed *domain.StageEvent
	hooks := domain.LifecycleHooks{
		OnStageEnd: func(ctx context.Context, e *domain.StageEvent) {
			if e.Error != "" {
				failed = e
			}
		},
	}

	h := &pipelineHarness{publishErr: errors.New("remote rejected the push")}
	eng, _ := newTestEngine(t, h, hooks)

	if _, err := eng.Execute(context.Background(), domain.TriggerSchedule); err == nil {
		t.Fatal("expected publish failure to surface")
	}

	if failed == nil {
		t.Fatal("no failing stage event observed")
	}
	if failed.Stage != domain.StagePublish {
		t.Errorf("failing stage = %s, want publish", failed.Stage)
	}
	if failed.Error != "remote rejected the push" {
		t.Errorf("stage error = %q", failed.Error)
	}
}

type spyArchive struct {
	runs    []*domain.Run
	reports []string
}

func (a *spyArchive) Archive(ctx context.Context, run *domain.Run, report string) error {
	a.runs = append(a.runs, run)
	a.reports = append(a.reports, report)
	return nil
}

func (a *spyArchive) Read(ctx context.Context, id string) (*domain.Run, string, error) {
	return nil, "", domain.ErrRunNotFound
}

func TestTerminalRunsAreArchived(t *testing.T) {
	h := &pipelineHarness{
		publish: &ports.PublishResult{Committed: true, CommitHash: "f00ba4", ChangedFiles: []string{"data/PORTFOLIO.md"}},
	}
	arch := &spyArchive{}
	eng, err := runtime.NewEngine(runtime.Config{
		Provisioner: h,
		Agent:       h,
		Publisher:   h,
		Store:       memory.NewStore(),
		Locker:      memory.NewLocker(),
		Archive:     arch,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	run, err := eng.Execute(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(arch.runs) != 1 {
		t.Fatalf("expected 1 archived run, got %d", len(arch.runs))
	}
	if arch.runs[0].ID != run.ID {
		t.Errorf("archived run ID = %q, want %q", arch.runs[0].ID, run.ID)
	}

	report := arch.reports[0]
	for _, want := range []string{run.ID, "published", "f00ba4"} {
		if !strings.Contains(report, want) {
			t.Errorf("archived report missing %q:\n%s", want, report)
		}
	}
}

func TestNewEngineRejectsMissingCollaborators(t *testing.T) {
	h := &pipelineHarness{}
	_, err := runtime.NewEngine(runtime.Config{
		Agent:     h,
		Publisher: h,
		Store:     memory.NewStore(),
		Locker:    memory.NewLocker(),
	})
	if err == nil {
		t.Error("expected error for missing provisioner")
	}
}
