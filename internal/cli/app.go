package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/logging"
	"github.com/aretw0/flipper/internal/provision"
	"github.com/aretw0/flipper/internal/runtime"
	"github.com/aretw0/flipper/internal/scout"
	"github.com/aretw0/flipper/pkg/adapters/file"
	"github.com/aretw0/flipper/pkg/adapters/git"
	"github.com/aretw0/flipper/pkg/adapters/github"
	loamadapter "github.com/aretw0/flipper/pkg/adapters/loam"
	"github.com/aretw0/flipper/pkg/adapters/memory"
	"github.com/aretw0/flipper/pkg/adapters/process"
	redisadapter "github.com/aretw0/flipper/pkg/adapters/redis"
	"github.com/aretw0/flipper/pkg/observability"
	"github.com/aretw0/flipper/pkg/persistence/middleware"
	"github.com/aretw0/flipper/pkg/ports"
	"github.com/aretw0/flipper/pkg/registry"
)

// AppOptions carry the command-level knobs into the factory.
type AppOptions struct {
	// ConfigPath names the configuration file. Empty uses the default
	// path and tolerates its absence.
	ConfigPath string

	// Debug forces debug-level logging.
	Debug bool

	// Format is the log format the command prefers when the
	// configuration does not name one.
	Format logging.Format
}

// App bundles the wired pipeline with the collaborators commands use
// directly.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *runtime.Engine
	Store   ports.RunStore
	Archive *loamadapter.Archive
	Metrics *observability.Metrics

	closers []func() error
}

// BuildApp loads the configuration and assembles the full pipeline:
// provisioner, agent, publisher, store, lock and archive.
func BuildApp(opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg, opts.Debug, opts.Format)
	metrics := observability.NewMetrics()

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	}

	// Redis serves run history and the run lock when configured.
	// Without it, history lives in memory and a lock file still keeps
	// two flipper processes on the same host from overlapping.
	var store ports.RunStore
	var locker ports.DistributedLocker
	if cfg.Redis.Enabled() {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, client.Close)
		store = redisadapter.NewFromClient(client)
		locker = redisadapter.NewLocker(client, "flipper:")
	} else {
		store = memory.NewStore()
		locker = file.NewLocker(filepath.Join(cfg.StateDir, "locks"))
	}

	// Credentials leak into error strings through authenticated remote
	// URLs; scrub records before they leave the process.
	store = middleware.NewRedactionMiddleware(middleware.DefaultRedactionPatterns())(store)
	store = middleware.NewMetricsMiddleware(metrics.Registry())(store)
	app.Store = store

	// The archive sits under the state dir, outside the work tree, so
	// archived runs never show up in the publish diff.
	archive, err := loamadapter.Open(filepath.Join(cfg.StateDir, "archive"))
	if err != nil {
		return nil, err
	}
	app.Archive = archive

	agent, err := buildAgent(cfg, logger)
	if err != nil {
		return nil, err
	}

	provisioner := provision.New(provision.Config{
		Dir:               cfg.Workspace.Dir,
		Branch:            cfg.Publish.Branch,
		Token:             cfg.GitHub.Token,
		RequireCredential: cfg.Publish.PushEnabled(),
		AgentBinary:       cfg.Agent.Command,
	}, logger)

	publisher := git.New(git.Config{
		AuthorName:    cfg.Publish.AuthorName,
		AuthorEmail:   cfg.Publish.AuthorEmail,
		MessagePrefix: cfg.Publish.Prefix,
		Remote:        cfg.Publish.Remote,
		Branch:        cfg.Publish.Branch,
		DisablePush:   !cfg.Publish.PushEnabled(),
	}, logger)

	engine, err := runtime.NewEngine(runtime.Config{
		Provisioner: provisioner,
		Agent:       agent,
		Publisher:   publisher,
		Store:       store,
		Locker:      locker,
		Archive:     archive,
		Hooks:       metrics.Hooks(),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	app.Engine = engine

	return app, nil
}

// buildAgent selects the built-in scout or the configured external
// command.
func buildAgent(cfg *config.Config, logger *slog.Logger) (ports.Agent, error) {
	if !cfg.Agent.Builtin {
		return process.New(process.Config{
			Command: cfg.Agent.Command,
			Args:    cfg.Agent.Args,
			Env:     cfg.Agent.Env,
			Timeout: cfg.Agent.Timeout.Std(),
		}, logger), nil
	}

	params, err := cfg.Agent.ScoutParams()
	if err != nil {
		return nil, fmt.Errorf("agent.params: %w", err)
	}

	sources, err := buildSources(cfg, params)
	if err != nil {
		return nil, err
	}

	return scout.New(logger, sources, cfg.Workspace.DataDir), nil
}

// buildSources resolves the scout's trend sources through the registry
// so the configuration can name them.
func buildSources(cfg *config.Config, params config.ScoutParams) ([]ports.TrendSource, error) {
	reg := registry.New()
	reg.Register("github-search", func(p registry.Params) (ports.TrendSource, error) {
		search := github.NewClient(p.Token)
		if len(p.Queries) > 0 {
			search.Queries = p.Queries
		}
		return search, nil
	})
	reg.Register("github-trending", func(registry.Params) (ports.TrendSource, error) {
		return github.NewTrending(), nil
	})

	names := params.Sources
	if len(names) == 0 {
		names = []string{"github-search"}
		if !params.DisableTrending {
			names = append(names, "github-trending")
		}
	}

	p := registry.Params{Token: cfg.GitHub.ResolvedToken(), Queries: params.Queries}
	sources := make([]ports.TrendSource, 0, len(names))
	for _, name := range names {
		src, err := reg.Build(name, p)
		if err != nil {
			return nil, fmt.Errorf("agent.params.sources: %w (known: %s)",
				err, strings.Join(reg.Names(), ", "))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Close releases backend connections.
func (a *App) Close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
}
