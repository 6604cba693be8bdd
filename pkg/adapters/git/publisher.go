// Package git publishes workspace changes using the system git binary.
//
// No git library is linked; every operation shells out with the run context
// so cancellation propagates into hung network calls.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/flipper/pkg/ports"
)

// Config carries the fixed publishing identity and targets.
type Config struct {
	// AuthorName and AuthorEmail form the synthetic commit identity.
	// They are injected per command and never written into the checkout.
	AuthorName  string
	AuthorEmail string

	// MessagePrefix is the fixed label in front of the run timestamp.
	MessagePrefix string

	// Remote and Branch name the push target. Branch defaults to HEAD,
	// pushing whatever branch the checkout has.
	Remote string
	Branch string

	// DisablePush stops after the commit, for local and dry-run modes.
	DisablePush bool
}

func (c *Config) applyDefaults() {
	if c.AuthorName == "" {
		c.AuthorName = "flipper-bot"
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = "flipper-bot@users.noreply.github.com"
	}
	if c.MessagePrefix == "" {
		c.MessagePrefix = "Domain flipping update"
	}
	if c.Remote == "" {
		c.Remote = "origin"
	}
	if c.Branch == "" {
		c.Branch = "HEAD"
	}
}

// Publisher implements ports.Publisher on top of the git CLI.
type Publisher struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Publisher. Zero-value config fields get sane defaults.
func New(cfg Config, logger *slog.Logger) *Publisher {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, logger: logger}
}

// Publish stages the work tree and, only if something actually changed,
// commits with the fixed identity and pushes. A clean tree is a successful
// no-op. Push failures are returned as-is; there is no retry.
func (p *Publisher) Publish(ctx context.Context, ws *ports.Workspace) (*ports.PublishResult, error) {
	status, err := runGit(ctx, ws.Dir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		p.logger.Info("work tree clean, nothing to publish", "dir", ws.Dir)
		return &ports.PublishResult{Committed: false}, nil
	}

	if _, err := runGit(ctx, ws.Dir, "add", "-A"); err != nil {
		return nil, fmt.Errorf("git add failed: %w", err)
	}

	staged, err := runGit(ctx, ws.Dir, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	files := splitLines(staged)
	if len(files) == 0 {
		// Staging can come up empty when the only changes cancel out.
		p.logger.Info("nothing staged after add, skipping commit", "dir", ws.Dir)
		return &ports.PublishResult{Committed: false}, nil
	}

	message := fmt.Sprintf("%s: %s", p.cfg.MessagePrefix, time.Now().UTC().Format(time.RFC3339))
	_, err = runGit(ctx, ws.Dir,
		"-c", "user.name="+p.cfg.AuthorName,
		"-c", "user.email="+p.cfg.AuthorEmail,
		"commit", "-m", message,
	)
	if err != nil {
		return nil, fmt.Errorf("git commit failed: %w", err)
	}

	hash, err := runGit(ctx, ws.Dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("git rev-parse failed: %w", err)
	}
	hash = strings.TrimSpace(hash)

	result := &ports.PublishResult{
		Committed:    true,
		CommitHash:   hash,
		ChangedFiles: files,
	}

	if p.cfg.DisablePush {
		p.logger.Info("push disabled, commit kept local",
			"commit", hash, "files", len(files))
		return result, nil
	}

	branch := ws.Branch
	if branch == "" {
		branch = p.cfg.Branch
	}
	if _, err := runGit(ctx, ws.Dir, "push", p.cfg.Remote, branch); err != nil {
		return nil, fmt.Errorf("git push failed: %w", err)
	}

	p.logger.Info("published",
		"commit", hash, "files", len(files), "remote", p.cfg.Remote, "branch", branch)
	return result, nil
}

// runGit executes one git command in dir, returning stdout.
// Stderr is folded into the error for diagnosis.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
