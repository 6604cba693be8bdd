package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/flipper"
	"github.com/aretw0/flipper/internal/presentation/tui"
	"github.com/aretw0/flipper/pkg/domain"
)

// RunOptions configures a single manual pipeline pass.
type RunOptions struct {
	ConfigPath string
	Debug      bool

	// JSON prints the run record on stdout and suppresses the banner
	// and system messages.
	JSON bool
}

// RunOnce executes one manual pipeline pass and reports the outcome.
// Interrupts are a clean exit; pipeline failures surface as the error.
func RunOnce(opts RunOptions) error {
	app, err := BuildApp(AppOptions{ConfigPath: opts.ConfigPath, Debug: opts.Debug})
	if err != nil {
		return err
	}
	defer app.Close()

	if !opts.JSON {
		tui.PrintBanner(flipper.Version)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	run, runErr := app.Engine.Execute(sigCtx, domain.TriggerManual)
	if errors.Is(runErr, domain.ErrRunInProgress) {
		return fmt.Errorf("a run is already in progress; overlapping runs are skipped")
	}

	if opts.JSON {
		if run != nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(run); err != nil {
				return err
			}
		}
	} else {
		printOutcome(run)
	}

	if isInterrupted(runErr) && sigCtx.Signal() != nil {
		if !opts.JSON {
			printSystemMessage("Interrupted.")
		}
		return nil
	}
	return runErr
}

// printOutcome reports successful terminal states. Failures are left to
// the returned error so they print exactly once.
func printOutcome(run *domain.Run) {
	if run == nil {
		return
	}
	if run.Summary != "" {
		printSystemMessage("Agent: %s", run.Summary)
	}
	switch run.Status {
	case domain.StatusPublished:
		printSystemMessage("Published commit %s touching %d file(s).", shortHash(run.CommitHash), len(run.ChangedFiles))
	case domain.StatusNoop:
		printSystemMessage("Work tree unchanged, nothing to publish.")
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
