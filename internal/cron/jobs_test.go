package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
)

// testSweeper implements TokenSweeper for job tests.
type testSweeper struct {
	sweepCalls atomic.Int32
	removed    int
	remaining  int
}

func (s *testSweeper) Sweep() int {
	s.sweepCalls.Add(1)
	return s.removed
}

func (s *testSweeper) Len() int { return s.remaining }

// testRecorder implements UsageRecorder for job tests.
type testRecorder struct {
	calls atomic.Int32
	err   error
}

func (r *testRecorder) SnapshotUsage(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfirmationSweepJob_Name(t *testing.T) {
	t.Parallel()

	j := &ConfirmationSweepJob{Store: &testSweeper{}, Logger: testLogger()}
	if j.Name() != "confirmation_sweep" {
		t.Errorf("Name() = %q", j.Name())
	}
}

func TestConfirmationSweepJob_Schedule(t *testing.T) {
	t.Parallel()

	j := &ConfirmationSweepJob{Store: &testSweeper{}, Logger: testLogger()}
	if j.Schedule() != "*/1 * * * *" {
		t.Errorf("default Schedule() = %q", j.Schedule())
	}

	j.ScheduleExpr = "*/2 * * * *"
	if j.Schedule() != "*/2 * * * *" {
		t.Errorf("override Schedule() = %q", j.Schedule())
	}
}

func TestConfirmationSweepJob_Run(t *testing.T) {
	t.Parallel()

	sweeper := &testSweeper{removed: 3, remaining: 1}
	j := &ConfirmationSweepJob{Store: sweeper, Logger: testLogger()}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sweeper.sweepCalls.Load() != 1 {
		t.Errorf("Sweep calls = %d, want 1", sweeper.sweepCalls.Load())
	}
}

func TestUsageSnapshotJob_Name(t *testing.T) {
	t.Parallel()

	j := &UsageSnapshotJob{Backend: &testRecorder{}, Logger: testLogger()}
	if j.Name() != "usage_snapshot" {
		t.Errorf("Name() = %q", j.Name())
	}
}

func TestUsageSnapshotJob_Schedule(t *testing.T) {
	t.Parallel()

	j := &UsageSnapshotJob{Backend: &testRecorder{}, Logger: testLogger()}
	if j.Schedule() != "*/10 * * * *" {
		t.Errorf("default Schedule() = %q", j.Schedule())
	}

	j.ScheduleExpr = "0 * * * *"
	if j.Schedule() != "0 * * * *" {
		t.Errorf("override Schedule() = %q", j.Schedule())
	}
}

func TestUsageSnapshotJob_Run(t *testing.T) {
	t.Parallel()

	rec := &testRecorder{}
	j := &UsageSnapshotJob{Backend: rec, Logger: testLogger()}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.calls.Load() != 1 {
		t.Errorf("SnapshotUsage calls = %d, want 1", rec.calls.Load())
	}
}

func TestUsageSnapshotJob_RunError(t *testing.T) {
	t.Parallel()

	boom := errors.New("database locked")
	j := &UsageSnapshotJob{Backend: &testRecorder{err: boom}, Logger: testLogger()}

	err := j.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}
}
