package ports

import (
	"context"

	"github.com/aretw0/flipper/pkg/domain"
)

// RunStore defines the interface for persisting run records.
// The daemon writes a record when a run starts and updates it on completion,
// so operators can inspect history even after restarts.
type RunStore interface {
	// Save persists the run, creating or overwriting by run ID.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.Run, error)

	// List returns up to limit runs, most recently started first.
	// A non-positive limit returns all known runs.
	List(ctx context.Context, limit int) ([]*domain.Run, error)

	// Delete removes a run record by ID.
	Delete(ctx context.Context, id string) error
}
