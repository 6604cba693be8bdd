package ports

import "context"

// TrendSource supplies raw candidate terms for the keyword harvest.
// Sources are best-effort: a failing source degrades the harvest but
// never fails the run.
type TrendSource interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch returns raw terms. Duplicates are fine; the harvester dedupes.
	Fetch(ctx context.Context) ([]string, error)
}
