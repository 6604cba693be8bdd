package flipper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/provision"
	"github.com/aretw0/flipper/internal/runtime"
	"github.com/aretw0/flipper/internal/scout"
	"github.com/aretw0/flipper/pkg/adapters/file"
	"github.com/aretw0/flipper/pkg/adapters/git"
	"github.com/aretw0/flipper/pkg/adapters/github"
	"github.com/aretw0/flipper/pkg/adapters/memory"
	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// Engine is the high-level entry point for the flipper library.
// It wraps the internal pipeline and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	provisioner ports.Provisioner
	agent       ports.Agent
	publisher   ports.Publisher
	store       ports.RunStore
	locker      ports.DistributedLocker
	archive     ports.RunArchive
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	stateDir    string
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithProvisioner injects a custom provisioner, bypassing the default
// preflight checks on the workspace.
func WithProvisioner(p ports.Provisioner) Option {
	return func(e *Engine) {
		e.provisioner = p
	}
}

// WithAgent injects a custom analysis agent in place of the built-in scout.
func WithAgent(a ports.Agent) Option {
	return func(e *Engine) {
		e.agent = a
	}
}

// WithPublisher injects a custom publisher in place of the git adapter.
func WithPublisher(p ports.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithStore injects a custom run store in place of the in-memory one.
func WithStore(s ports.RunStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker injects a custom run lock in place of the default lock file.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithArchive enables archiving of finished runs with their reports.
func WithArchive(a ports.RunArchive) Option {
	return func(e *Engine) {
		e.archive = a
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStateDir relocates flipper's own state, the default lock files.
// It must stay outside the workspace work tree or the publisher would
// pick it up.
func WithStateDir(dir string) Option {
	return func(e *Engine) {
		e.stateDir = dir
	}
}

// New initializes a new flipper Engine over the given git workspace.
// By default it assembles the full pipeline: preflight checks on the
// workspace, the built-in scout agent, a git publisher and an in-memory
// run store guarded by a lock file.
// If WithProvisioner is provided, workspaceDir can be empty.
func New(workspaceDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first to check which collaborators were provided
	for _, opt := range opts {
		opt(eng)
	}

	if workspaceDir == "" && eng.provisioner == nil {
		return nil, fmt.Errorf("workspaceDir is required when no custom provisioner is provided")
	}

	if workspaceDir != "" {
		absPath, err := filepath.Abs(workspaceDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		workspaceDir = absPath
		eng.Name = filepath.Base(absPath)
	}

	// Ensure logger is initialized (so we don't pass nil to the runtime,
	// which would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("workspace", eng.Name)
	}

	if eng.stateDir == "" {
		eng.stateDir = config.DefaultStateDir()
	}

	if eng.provisioner == nil {
		eng.provisioner = provision.New(provision.Config{
			Dir:               workspaceDir,
			RequireCredential: true,
		}, eng.logger)
	}
	if eng.agent == nil {
		// Same trend sources as the daemon default. Search works
		// unauthenticated, just with tighter rate limits.
		token := os.Getenv(provision.DefaultTokenEnv)
		eng.agent = scout.New(eng.logger, []ports.TrendSource{
			github.NewClient(token),
			github.NewTrending(),
		}, scout.DefaultReportDir)
	}
	if eng.publisher == nil {
		eng.publisher = git.New(git.Config{}, eng.logger)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.locker == nil {
		eng.locker = file.NewLocker(filepath.Join(eng.stateDir, "locks"))
	}

	rt, err := runtime.NewEngine(runtime.Config{
		Provisioner: eng.provisioner,
		Agent:       eng.agent,
		Publisher:   eng.publisher,
		Store:       eng.store,
		Locker:      eng.locker,
		Archive:     eng.archive,
		Hooks:       eng.hooks,
		Logger:      eng.logger,
	})
	if err != nil {
		return nil, err
	}
	eng.runtime = rt

	return eng, nil
}

var _ ports.Pipeline = (*Engine)(nil)

// Run executes one manual pipeline pass and returns the terminal record.
func (e *Engine) Run(ctx context.Context) (*domain.Run, error) {
	return e.runtime.Execute(ctx, domain.TriggerManual)
}

// Execute performs one pipeline pass for the given trigger.
// When another pass already holds the run lock it returns
// domain.ErrRunInProgress and no record is created.
func (e *Engine) Execute(ctx context.Context, trigger domain.Trigger) (*domain.Run, error) {
	return e.runtime.Execute(ctx, trigger)
}

// Runs returns up to limit run records, most recently started first.
func (e *Engine) Runs(ctx context.Context, limit int) ([]*domain.Run, error) {
	return e.store.List(ctx, limit)
}

// Store returns the run store backing the engine.
func (e *Engine) Store() ports.RunStore {
	return e.store
}
