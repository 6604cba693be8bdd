// Package provision runs the preflight checks that gate every pipeline run.
//
// The workspace is an existing git checkout that is reused across runs; this
// package verifies it is usable before the agent touches it, it never clones
// or repairs anything. A failed check fails the run and the agent does not
// execute.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// DefaultTokenEnv is the variable consulted and injected for the credential.
const DefaultTokenEnv = "GITHUB_TOKEN"

// Check is one preflight validation of the run environment.
type Check interface {
	// Name identifies the check in errors and logs.
	Name() string

	// Verify returns an error describing what is missing or broken.
	Verify(ctx context.Context) error
}

// BinaryCheck verifies a required executable resolves on PATH.
type BinaryCheck struct {
	Binary string
}

func (c BinaryCheck) Name() string { return "binary:" + c.Binary }

func (c BinaryCheck) Verify(ctx context.Context) error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", c.Binary, err)
	}
	return nil
}

// GitWorkTree verifies the directory sits inside a git work tree.
type GitWorkTree struct {
	Dir string
}

func (c GitWorkTree) Name() string { return "git-worktree" }

func (c GitWorkTree) Verify(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = c.Dir

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return fmt.Errorf("%s is not a git work tree: %s",
				c.Dir, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("%s is not a git work tree: %w", c.Dir, err)
	}
	if strings.TrimSpace(string(out)) != "true" {
		return fmt.Errorf("%s is not a git work tree", c.Dir)
	}
	return nil
}

// CredentialCheck verifies the publishing credential is present, from
// config or the environment. The value itself never appears in errors
// or logs.
type CredentialCheck struct {
	// Env names the variable consulted when Value is empty.
	Env string

	// Value is the configured token, if any.
	Value string
}

func (c CredentialCheck) Name() string { return "credential" }

func (c CredentialCheck) Verify(ctx context.Context) error {
	if strings.TrimSpace(c.Value) != "" {
		return nil
	}
	if strings.TrimSpace(os.Getenv(c.Env)) != "" {
		return nil
	}
	return fmt.Errorf("no token configured and %s is unset", c.Env)
}

// WritableDir verifies files can be created under the directory.
type WritableDir struct {
	Dir string
}

func (c WritableDir) Name() string { return "writable-dir" }

func (c WritableDir) Verify(ctx context.Context) error {
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", c.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.Dir)
	}

	probe, err := os.CreateTemp(c.Dir, ".flipper-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", c.Dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Config describes the workspace every run gets.
type Config struct {
	// Dir is the existing git checkout the agent works in.
	Dir string

	// Branch is the branch the publisher pushes to. Empty pushes HEAD.
	Branch string

	// Token is the configured credential; when empty TokenEnv is consulted.
	Token string

	// TokenEnv names the environment variable carrying the credential.
	TokenEnv string

	// RequireCredential fails provisioning when no token can be found.
	// Deployments that keep the push disabled turn this off.
	RequireCredential bool

	// AgentBinary adds a PATH check for external agent commands.
	AgentBinary string
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.TokenEnv == "" {
		c.TokenEnv = DefaultTokenEnv
	}
}

// Provisioner implements ports.Provisioner as an ordered checks pipeline.
type Provisioner struct {
	cfg    Config
	checks []Check
	logger *slog.Logger
}

// New assembles the check pipeline for the given workspace configuration.
func New(cfg Config, logger *slog.Logger) *Provisioner {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	checks := []Check{
		BinaryCheck{Binary: "git"},
		GitWorkTree{Dir: cfg.Dir},
	}
	if cfg.RequireCredential {
		checks = append(checks, CredentialCheck{Env: cfg.TokenEnv, Value: cfg.Token})
	}
	checks = append(checks, WritableDir{Dir: cfg.Dir})
	if cfg.AgentBinary != "" {
		checks = append(checks, BinaryCheck{Binary: cfg.AgentBinary})
	}

	return &Provisioner{cfg: cfg, checks: checks, logger: logger}
}

// Provision runs every check in order and assembles the run workspace.
// The first failing check aborts with an error naming it; there are no
// retries.
func (p *Provisioner) Provision(ctx context.Context, run *domain.Run) (*ports.Workspace, error) {
	for _, check := range p.checks {
		if err := check.Verify(ctx); err != nil {
			return nil, fmt.Errorf("check %s: %w", check.Name(), err)
		}
		p.logger.Debug("preflight check passed", "check", check.Name(), "run_id", run.ID)
	}

	ws := &ports.Workspace{
		Dir:    p.cfg.Dir,
		Branch: p.cfg.Branch,
		Env:    p.environment(run),
	}
	p.logger.Info("workspace provisioned", "dir", ws.Dir, "checks", len(p.checks))
	return ws, nil
}

// environment assembles the variables injected into external agents.
// The token value itself must never be logged.
func (p *Provisioner) environment(run *domain.Run) []string {
	env := []string{
		"FLIPPER_RUN_ID=" + run.ID,
		"FLIPPER_TRIGGER=" + string(run.Trigger),
	}

	token := p.cfg.Token
	if token == "" {
		token = os.Getenv(p.cfg.TokenEnv)
	}
	if token != "" {
		env = append(env, DefaultTokenEnv+"="+token)
	}
	return env
}
