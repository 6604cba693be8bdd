package ports

import (
	"context"

	"github.com/aretw0/flipper/pkg/domain"
)

// Pipeline runs the provision, agent, publish sequence exactly once.
// This is the primary interface used by driving adapters (CLI, HTTP, MCP)
// and the scheduler; they trigger runs without knowing the stage wiring.
type Pipeline interface {
	// Execute performs one full run for the given trigger and returns the
	// terminal run record. A failed stage returns the failed record together
	// with the stage error. When another run already holds the run lock the
	// error is domain.ErrRunInProgress and no record is created.
	Execute(ctx context.Context, trigger domain.Trigger) (*domain.Run, error)
}
