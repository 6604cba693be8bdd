package ports

import (
	"context"

	"github.com/aretw0/flipper/pkg/domain"
)

// RunArchive keeps a durable, human-readable history of finished runs.
// Unlike the RunStore, which is a bounded operational window, the archive
// is append-only and meant to be browsed (or committed) as plain files.
type RunArchive interface {
	// Archive stores the finished run together with its rendered report.
	Archive(ctx context.Context, run *domain.Run, report string) error

	// Read returns an archived run and its report by run ID.
	// Returns domain.ErrRunNotFound if the run was never archived.
	Read(ctx context.Context, id string) (*domain.Run, string, error)
}
