package ports

import "context"

// PublishResult reports what a publish pass did.
type PublishResult struct {
	// Committed is false when the work tree had no changes and the
	// publish was skipped entirely.
	Committed bool

	// CommitHash identifies the created commit, when one was made.
	CommitHash string

	// ChangedFiles lists the paths included in the commit.
	ChangedFiles []string
}

// Publisher commits and pushes workspace changes produced by an agent.
// Implementations must gate on an actual diff: a clean tree publishes
// nothing and is not an error.
type Publisher interface {
	Publish(ctx context.Context, ws *Workspace) (*PublishResult, error)
}
