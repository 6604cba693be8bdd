package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule" // Fired by the interval scheduler
	TriggerManual   Trigger = "manual"   // Requested by an operator (CLI, HTTP, MCP)
)

// RunStatus defines the lifecycle stage of a run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"   // Pipeline is executing
	StatusPublished RunStatus = "published" // Agent produced changes and they were committed and pushed
	StatusNoop      RunStatus = "noop"      // Agent finished but the work tree was unchanged; nothing committed
	StatusFailed    RunStatus = "failed"    // Provisioning, agent or publishing failed
)

// Run captures one end-to-end execution of the pipeline.
// It is the unit persisted by the RunStore and archived after completion.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Trigger records whether the scheduler or an operator started the run.
	Trigger Trigger `json:"trigger"`

	// Status is the current lifecycle stage.
	Status RunStatus `json:"status"`

	// StartedAt and FinishedAt bound the run. FinishedAt is zero while running.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// ChangedFiles lists the paths the publisher committed. Empty for noop runs.
	ChangedFiles []string `json:"changed_files,omitempty"`

	// CommitHash is the hash of the published commit, if any.
	CommitHash string `json:"commit_hash,omitempty"`

	// ReportPaths lists the artifacts the agent reported writing, relative to the workspace.
	ReportPaths []string `json:"report_paths,omitempty"`

	// Summary carries the agent's one-line outcome description.
	Summary string `json:"summary,omitempty"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`
}

// NewRun creates a run in the running state with a fresh ID.
func NewRun(trigger Trigger) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Finish marks the run completed with the given status.
func (r *Run) Finish(status RunStatus) {
	r.Status = status
	r.FinishedAt = time.Now().UTC()
}

// Fail marks the run failed and records the cause.
func (r *Run) Fail(err error) {
	r.Finish(StatusFailed)
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration returns how long the run took, or the elapsed time if still running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Done reports whether the run reached a terminal status.
func (r *Run) Done() bool {
	return r.Status != StatusRunning
}
