package ports

import (
	"context"

	"github.com/aretw0/flipper/pkg/domain"
)

// Workspace is a prepared execution environment for one run.
type Workspace struct {
	// Dir is the root of the checkout the agent works in.
	Dir string

	// Branch is the branch the publisher pushes to.
	Branch string

	// Env is the assembled process environment for external agents.
	// Secrets are injected here and must never be logged.
	Env []string
}

// Provisioner prepares the workspace before the agent runs.
// Provisioning is idempotent: the same directory is reused and refreshed
// across runs rather than recreated.
type Provisioner interface {
	Provision(ctx context.Context, run *domain.Run) (*Workspace, error)
}
