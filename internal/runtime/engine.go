// Package runtime wires the pipeline stages into one engine.
//
// A run is strictly ordered: provision, agent, publish. A stage failure
// finalizes the run and the later stages never execute. The run lock is
// held for the whole pass so overlapping triggers are skipped, not queued.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// LockKey is the single mutual-exclusion key guarding pipeline passes.
const LockKey = "pipeline"

// DefaultLockTTL bounds how long a crashed holder can keep the run lock.
const DefaultLockTTL = 30 * time.Minute

// Config wires the engine's collaborators.
type Config struct {
	// Provisioner, Agent, Publisher, Store and Locker are required.
	Provisioner ports.Provisioner
	Agent       ports.Agent
	Publisher   ports.Publisher
	Store       ports.RunStore
	Locker      ports.DistributedLocker

	// Archive, when set, receives every terminal run with its report.
	Archive ports.RunArchive

	// Hooks receive lifecycle events. Nil callbacks are skipped.
	Hooks domain.LifecycleHooks

	// LockTTL defaults to DefaultLockTTL.
	LockTTL time.Duration

	Logger *slog.Logger
}

// Engine implements ports.Pipeline.
type Engine struct {
	provisioner ports.Provisioner
	agent       ports.Agent
	publisher   ports.Publisher
	store       ports.RunStore
	locker      ports.DistributedLocker
	archive     ports.RunArchive
	hooks       domain.LifecycleHooks
	lockTTL     time.Duration
	logger      *slog.Logger
}

var _ ports.Pipeline = (*Engine)(nil)

// NewEngine creates the pipeline engine, validating required collaborators.
func NewEngine(cfg Config) (*Engine, error) {
	switch {
	case cfg.Provisioner == nil:
		return nil, errors.New("runtime: provisioner is required")
	case cfg.Agent == nil:
		return nil, errors.New("runtime: agent is required")
	case cfg.Publisher == nil:
		return nil, errors.New("runtime: publisher is required")
	case cfg.Store == nil:
		return nil, errors.New("runtime: run store is required")
	case cfg.Locker == nil:
		return nil, errors.New("runtime: locker is required")
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		provisioner: cfg.Provisioner,
		agent:       cfg.Agent,
		publisher:   cfg.Publisher,
		store:       cfg.Store,
		locker:      cfg.Locker,
		archive:     cfg.Archive,
		hooks:       cfg.Hooks,
		lockTTL:     cfg.LockTTL,
		logger:      cfg.Logger,
	}, nil
}

// Execute performs one full pipeline pass for the given trigger.
// Manual and scheduled triggers run the identical sequence.
func (e *Engine) Execute(ctx context.Context, trigger domain.Trigger) (*domain.Run, error) {
	unlock, err := e.locker.TryLock(ctx, LockKey, e.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("run lock: %w", err)
	}
	defer func() {
		// Release must go through even when the run context was canceled,
		// otherwise the key stays taken until the TTL lapses.
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			e.logger.Warn("failed to release run lock", "error", uerr)
		}
	}()

	run := domain.NewRun(trigger)
	e.logger.Info("run started", "run_id", run.ID, "trigger", trigger)
	e.fireRunStart(ctx, run)

	// A store outage is not a reason to skip the business of the run;
	// the record is retried at finalization.
	if err := e.store.Save(ctx, run); err != nil {
		e.logger.Warn("failed to persist run record", "run_id", run.ID, "error", err)
	}

	var ws *ports.Workspace
	if err := e.stage(ctx, run, domain.StageProvision, func(ctx context.Context) error {
		var err error
		ws, err = e.provisioner.Provision(ctx, run)
		return err
	}); err != nil {
		return e.finalize(ctx, run, err)
	}

	var result *ports.AgentResult
	if err := e.stage(ctx, run, domain.StageAgent, func(ctx context.Context) error {
		var err error
		result, err = e.agent.Execute(ctx, ws)
		if err != nil {
			return err
		}
		if result == nil {
			return domain.ErrAgentResultMissing
		}
		return nil
	}); err != nil {
		return e.finalize(ctx, run, err)
	}
	run.Summary = result.Summary
	run.ReportPaths = result.ReportPaths

	var pub *ports.PublishResult
	if err := e.stage(ctx, run, domain.StagePublish, func(ctx context.Context) error {
		var err error
		pub, err = e.publisher.Publish(ctx, ws)
		return err
	}); err != nil {
		return e.finalize(ctx, run, err)
	}

	if pub.Committed {
		run.CommitHash = pub.CommitHash
		run.ChangedFiles = pub.ChangedFiles
		run.Finish(domain.StatusPublished)
		e.firePublish(ctx, run)
	} else {
		run.Finish(domain.StatusNoop)
	}

	return e.finalize(ctx, run, nil)
}

// stage runs one pipeline phase with its hooks and timing.
func (e *Engine) stage(ctx context.Context, run *domain.Run, name domain.Stage, fn func(context.Context) error) error {
	e.fireStageStart(ctx, run, name)
	start := time.Now()

	err := fn(ctx)

	e.fireStageEnd(ctx, run, name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// finalize persists and archives the terminal record and fires the finish
// hook. The stage error, if any, is returned to the caller alongside the
// failed record.
func (e *Engine) finalize(ctx context.Context, run *domain.Run, stageErr error) (*domain.Run, error) {
	if stageErr != nil {
		run.Fail(stageErr)
	}

	if err := e.store.Save(ctx, run); err != nil {
		e.logger.Warn("failed to persist run record", "run_id", run.ID, "error", err)
	}
	if e.archive != nil {
		if err := e.archive.Archive(ctx, run, runReport(run)); err != nil {
			e.logger.Warn("failed to archive run", "run_id", run.ID, "error", err)
		}
	}
	e.fireRunFinish(ctx, run)

	if stageErr != nil {
		e.logger.Error("run failed", "run_id", run.ID, "trigger", run.Trigger, "error", stageErr)
		return run, stageErr
	}

	e.logger.Info("run finished",
		"run_id", run.ID,
		"status", run.Status,
		"duration", run.Duration().Round(time.Millisecond).String(),
		"commit", run.CommitHash,
		"changed_files", len(run.ChangedFiles),
	)
	return run, nil
}

// runReport renders the markdown body archived with a terminal run.
func runReport(run *domain.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- Trigger: %s\n", run.Trigger)
	fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- Duration: %s\n", run.Duration().Round(time.Millisecond))
	}
	if run.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", run.Summary)
	}
	if run.CommitHash != "" {
		fmt.Fprintf(&b, "\nCommit `%s` touching %d file(s).\n", run.CommitHash, len(run.ChangedFiles))
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "\nFailure: %s\n", run.Error)
	}
	return b.String()
}

func (e *Engine) fireRunStart(ctx context.Context, run *domain.Run) {
	if e.hooks.OnRunStart == nil {
		return
	}
	e.hooks.OnRunStart(ctx, &domain.RunEvent{
		EventBase: eventBase(domain.EventRunStart, run.ID),
		Trigger:   run.Trigger,
		Status:    run.Status,
	})
}

func (e *Engine) fireRunFinish(ctx context.Context, run *domain.Run) {
	if e.hooks.OnRunFinish == nil {
		return
	}
	e.hooks.OnRunFinish(ctx, &domain.RunEvent{
		EventBase: eventBase(domain.EventRunFinish, run.ID),
		Trigger:   run.Trigger,
		Status:    run.Status,
		Duration:  run.Duration(),
	})
}

func (e *Engine) fireStageStart(ctx context.Context, run *domain.Run, stage domain.Stage) {
	if e.hooks.OnStageStart == nil {
		return
	}
	e.hooks.OnStageStart(ctx, &domain.StageEvent{
		EventBase: eventBase(domain.EventStageStart, run.ID),
		Stage:     stage,
	})
}

func (e *Engine) fireStageEnd(ctx context.Context, run *domain.Run, stage domain.Stage, d time.Duration, err error) {
	if e.hooks.OnStageEnd == nil {
		return
	}
	ev := &domain.StageEvent{
		EventBase: eventBase(domain.EventStageEnd, run.ID),
		Stage:     stage,
		Duration:  d,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	e.hooks.OnStageEnd(ctx, ev)
}

func (e *Engine) firePublish(ctx context.Context, run *domain.Run) {
	if e.hooks.OnPublish == nil {
		return
	}
	e.hooks.OnPublish(ctx, &domain.PublishEvent{
		EventBase:    eventBase(domain.EventPublish, run.ID),
		CommitHash:   run.CommitHash,
		ChangedFiles: run.ChangedFiles,
	})
}

func eventBase(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now().UTC(),
		Type:      t,
		RunID:     runID,
	}
}
