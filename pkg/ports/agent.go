package ports

import "context"

// AgentResult is the explicit payload every agent must emit when it finishes.
// Agents that complete without producing one are treated as failed; the engine
// never guesses an outcome from side effects alone.
type AgentResult struct {
	// Summary is a one-line description of what the pass produced.
	Summary string `json:"summary"`

	// ReportPaths lists the artifacts written, relative to the workspace root.
	ReportPaths []string `json:"report_paths"`

	// Stats carries counters for logging and metrics (keywords, candidates, ...).
	Stats map[string]int `json:"stats,omitempty"`
}

// Agent produces the analysis artifacts inside a provisioned workspace.
// Implementations range from the built-in scout to arbitrary external commands;
// the engine treats both identically.
type Agent interface {
	// Execute runs one analysis pass against the workspace.
	// The returned result is mandatory on success.
	Execute(ctx context.Context, ws *Workspace) (*AgentResult, error)
}
