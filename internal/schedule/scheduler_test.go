package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/flipper/internal/logging"
	"github.com/aretw0/flipper/pkg/domain"
)

type fakePipeline struct {
	mu       sync.Mutex
	triggers []domain.Trigger
	err      error
}

func (f *fakePipeline) Execute(ctx context.Context, trigger domain.Trigger) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return nil, f.err
	}
	run := domain.NewRun(trigger)
	run.Finish(domain.StatusNoop)
	return run, nil
}

func (f *fakePipeline) seen() []domain.Trigger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Trigger(nil), f.triggers...)
}

func TestRunTicksOnInterval(t *testing.T) {
	fp := &fakePipeline{}
	s := New(fp, 10*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	seen := fp.seen()
	if len(seen) < 2 {
		t.Fatalf("expected at least 2 ticks in 100ms at 10ms cadence, got %d", len(seen))
	}
	for _, tr := range seen {
		if tr != domain.TriggerSchedule {
			t.Errorf("tick used trigger %q, want schedule", tr)
		}
	}
}

func TestTriggerNowRunsManualPass(t *testing.T) {
	fp := &fakePipeline{}
	s := New(fp, time.Hour, logging.NewNop())

	run, err := s.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	if run.Trigger != domain.TriggerManual {
		t.Errorf("run trigger = %q, want manual", run.Trigger)
	}

	seen := fp.seen()
	if len(seen) != 1 || seen[0] != domain.TriggerManual {
		t.Errorf("pipeline saw %v, want one manual trigger", seen)
	}
}

func TestTriggerNowSurfacesContention(t *testing.T) {
	fp := &fakePipeline{err: domain.ErrRunInProgress}
	s := New(fp, time.Hour, logging.NewNop())

	_, err := s.TriggerNow(context.Background())
	if !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
}

func TestLoopSurvivesSkipsAndFailures(t *testing.T) {
	fp := &fakePipeline{err: domain.ErrRunInProgress}
	s := New(fp, 10*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	if len(fp.seen()) < 2 {
		t.Error("loop should keep ticking through skipped runs")
	}
}

func TestSetIntervalTakesEffect(t *testing.T) {
	fp := &fakePipeline{}
	// At an hourly cadence the loop would never tick within this test;
	// any observed tick proves the update was applied.
	s := New(fp, time.Hour, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.SetInterval(10 * time.Millisecond)

	deadline := time.After(2 * time.Second)
	for len(fp.seen()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no tick observed after shortening the interval")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestSetIntervalKeepsLatestUpdate(t *testing.T) {
	s := New(&fakePipeline{}, time.Hour, logging.NewNop())

	// Without a running loop nothing drains the channel; later calls
	// must still win.
	s.SetInterval(time.Minute)
	s.SetInterval(30 * time.Second)

	if got := <-s.updates; got != 30*time.Second {
		t.Errorf("pending update = %s, want 30s", got)
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(&fakePipeline{}, 0, logging.NewNop())
	if s.every != DefaultInterval {
		t.Errorf("every = %s, want %s", s.every, DefaultInterval)
	}
}
