package domain

import (
	"errors"
	"testing"
)

func TestNewRun(t *testing.T) {
	r := NewRun(TriggerSchedule)

	if r.ID == "" {
		t.Fatal("expected a generated run ID")
	}
	if r.Trigger != TriggerSchedule {
		t.Errorf("Trigger = %s", r.Trigger)
	}
	if r.Status != StatusRunning {
		t.Errorf("Status = %s, want running", r.Status)
	}
	if r.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
	if r.Done() {
		t.Error("fresh run should not be done")
	}
}

func TestRunFinish(t *testing.T) {
	r := NewRun(TriggerManual)
	r.Finish(StatusPublished)

	if r.Status != StatusPublished {
		t.Errorf("Status = %s, want published", r.Status)
	}
	if r.FinishedAt.IsZero() {
		t.Error("FinishedAt not set")
	}
	if !r.Done() {
		t.Error("finished run should be done")
	}
	if r.Duration() < 0 {
		t.Errorf("Duration = %v", r.Duration())
	}
}

func TestRunFail(t *testing.T) {
	r := NewRun(TriggerSchedule)
	r.Fail(errors.New("agent exploded"))

	if r.Status != StatusFailed {
		t.Errorf("Status = %s, want failed", r.Status)
	}
	if r.Error != "agent exploded" {
		t.Errorf("Error = %q", r.Error)
	}
	if r.FinishedAt.IsZero() {
		t.Error("FinishedAt not set")
	}
}
