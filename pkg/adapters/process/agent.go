// Package process runs the scouting agent as an external command.
//
// The contract with the child process is deliberately small: it runs
// with the provisioned workspace as its working directory, inherits
// the workspace environment on top of the parent's, and prints its
// result as a JSON object on stdout. Either the whole stdout is the
// object, or the object is the last non-empty line after free-form
// progress output.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// Config describes the command to launch.
type Config struct {
	// Command is the executable to run. Required.
	Command string
	// Args are passed to the command verbatim.
	Args []string
	// Env adds fixed variables to the child environment.
	Env map[string]string
	// Timeout bounds a single execution. Zero means the caller's
	// context is the only limit.
	Timeout time.Duration
}

// Agent executes a configured command and decodes its result payload.
type Agent struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a process-backed agent.
func New(cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{cfg: cfg, logger: logger}
}

// Execute runs the command inside the workspace and parses its result.
// A process that exits zero without printing a result object is an
// error: the pipeline never guesses what an agent did.
func (a *Agent) Execute(ctx context.Context, ws *ports.Workspace) (*ports.AgentResult, error) {
	if a.cfg.Command == "" {
		return nil, errors.New("process agent: no command configured")
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.cfg.Args...)
	cmd.Dir = ws.Dir

	// Workspace variables are appended last so they win over configured
	// and inherited values of the same name.
	env := cmd.Environ()
	for k, v := range a.cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range ws.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug("starting agent process", "command", a.cfg.Command, "args", a.cfg.Args, "dir", ws.Dir)
	start := time.Now()
	err := cmd.Run()
	a.logger.Debug("agent process finished", "duration", time.Since(start), "stdout_bytes", stdout.Len())

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("agent process failed: %w (stderr: %s)", err, msg)
		}
		return nil, fmt.Errorf("agent process failed: %w", err)
	}

	result, ok := decodeResult(stdout.String())
	if !ok {
		return nil, fmt.Errorf("agent process printed no result object: %w", domain.ErrAgentResultMissing)
	}

	// The summary is untrusted process output headed for logs and reports.
	summary, err := sanitizeSummary(result.Summary)
	if err != nil {
		return nil, fmt.Errorf("agent process result rejected: %w", err)
	}
	result.Summary = summary
	return result, nil
}

// decodeResult extracts the result payload from the process output.
// It first tries the whole output as one JSON object, which covers
// pretty-printed results spanning several lines, then falls back to
// the last non-empty line.
func decodeResult(output string) (*ports.AgentResult, bool) {
	trimmed := strings.TrimSpace(output)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var result ports.AgentResult
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			return &result, true
		}
	}

	lines := strings.Split(trimmed, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			return nil, false
		}
		var result ports.AgentResult
		if err := json.Unmarshal([]byte(line), &result); err != nil {
			return nil, false
		}
		return &result, true
	}
	return nil, false
}
