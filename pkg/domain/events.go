package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventRunFinish  EventType = "run_finish"
	EventStageStart EventType = "stage_start"
	EventStageEnd   EventType = "stage_end"
	EventPublish    EventType = "publish"
)

// Stage names a phase of the pipeline.
type Stage string

const (
	StageProvision Stage = "provision"
	StageAgent     Stage = "agent"
	StagePublish   Stage = "publish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent represents the start or completion of a run.
type RunEvent struct {
	EventBase
	Trigger Trigger   `json:"trigger"`
	Status  RunStatus `json:"status"`

	// Duration is only set on finish events.
	Duration time.Duration `json:"duration,omitempty"`
}

// StageEvent represents a pipeline phase starting or ending.
type StageEvent struct {
	EventBase
	Stage Stage `json:"stage"`

	// Duration and Error are only set on stage end.
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// PublishEvent represents a commit reaching the remote.
type PublishEvent struct {
	EventBase
	CommitHash   string   `json:"commit_hash"`
	ChangedFiles []string `json:"changed_files,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil hooks are skipped; callbacks run synchronously on the pipeline
// goroutine and should return quickly.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunFinish  func(context.Context, *RunEvent)
	OnStageStart func(context.Context, *StageEvent)
	OnStageEnd   func(context.Context, *StageEvent)
	OnPublish    func(context.Context, *PublishEvent)
}
