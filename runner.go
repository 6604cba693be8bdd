package flipper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/flipper/pkg/domain"
)

// DefaultInterval matches the original automation cadence of four runs a day.
const DefaultInterval = 6 * time.Hour

// Runner handles the periodic execution loop of the flipper engine using
// provided IO. This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Runner struct {
	Output io.Writer
	Every  time.Duration

	// Immediate runs one pass at startup instead of waiting a full
	// interval for the first tick.
	Immediate bool
}

// NewRunner creates a new Runner with the default cadence.
// Set Output before calling Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes scheduled passes until the context is canceled.
// Each pass writes one outcome line to Output. A pass that finds the run
// lock taken is reported as skipped, never queued.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	writer := r.Output
	if writer == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	every := r.Every
	if every <= 0 {
		every = DefaultInterval
	}

	if r.Immediate {
		run, err := engine.Execute(ctx, domain.TriggerSchedule)
		r.report(writer, run, err)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run, err := engine.Execute(ctx, domain.TriggerSchedule)
			r.report(writer, run, err)
		}
	}
}

func (r *Runner) report(w io.Writer, run *domain.Run, err error) {
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		fmt.Fprintln(w, "skipped: a run is already in progress")
	case err != nil && run != nil:
		fmt.Fprintf(w, "failed: %s (%s)\n", run.Error, run.ID)
	case err != nil:
		fmt.Fprintf(w, "failed: %v\n", err)
	case run.Status == domain.StatusNoop:
		fmt.Fprintf(w, "noop: no changes to publish (%s)\n", run.ID)
	default:
		fmt.Fprintf(w, "published: commit %s, %d file(s) (%s)\n", run.CommitHash, len(run.ChangedFiles), run.ID)
	}
}
