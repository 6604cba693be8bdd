package domain

import "errors"

// ErrRunInProgress is returned when a new run is requested while another one holds the run lock.
// Overlapping runs are skipped, never queued.
var ErrRunInProgress = errors.New("run already in progress")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrAgentResultMissing is returned when an agent finishes without emitting a result payload.
var ErrAgentResultMissing = errors.New("agent result missing")
