// Package schedule drives the pipeline on a fixed cadence.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// DefaultInterval matches the original automation cadence of four runs a day.
const DefaultInterval = 6 * time.Hour

// Scheduler executes one pipeline pass per tick. Mutual exclusion lives in
// the pipeline's run lock, not here: a tick that fires while any pass is in
// flight is skipped, never queued.
type Scheduler struct {
	pipeline ports.Pipeline
	every    time.Duration
	logger   *slog.Logger
	updates  chan time.Duration
}

// New constructs the scheduler loop with sane defaults.
func New(pipeline ports.Pipeline, every time.Duration, logger *slog.Logger) *Scheduler {
	if every <= 0 {
		every = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		pipeline: pipeline,
		every:    every,
		logger:   logger,
		updates:  make(chan time.Duration, 1),
	}
}

// SetInterval applies a new cadence to a running loop. The next tick fires
// a full interval from the moment the loop picks up the change.
func (s *Scheduler) SetInterval(every time.Duration) {
	if every <= 0 {
		return
	}
	for {
		select {
		case s.updates <- every:
			return
		case <-s.updates:
			// Discard an unconsumed update so the latest value wins.
		}
	}
}

// Run executes the periodic loop until context cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "every", s.every.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case every := <-s.updates:
			if every == s.every {
				continue
			}
			s.every = every
			ticker.Reset(every)
			s.logger.Info("schedule updated", "every", every.String())
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// TriggerNow runs one manual pass immediately on the caller's goroutine.
// It contends for the same run lock as scheduled ticks, so a pass already
// in flight surfaces as domain.ErrRunInProgress instead of queuing.
func (s *Scheduler) TriggerNow(ctx context.Context) (*domain.Run, error) {
	return s.pipeline.Execute(ctx, domain.TriggerManual)
}

func (s *Scheduler) tick(ctx context.Context) {
	run, err := s.pipeline.Execute(ctx, domain.TriggerSchedule)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		// Expected when a pass outlasts the interval or an operator
		// triggered one; no run record exists for a skipped tick.
		s.logger.Debug("tick skipped, a run is already in flight")
	case err != nil:
		// The engine logged the failure in detail; the daemon moves on
		// to the next tick.
		s.logger.Debug("tick failed", "error", err)
	default:
		s.logger.Debug("tick complete", "run_id", run.ID, "status", run.Status)
	}
}
