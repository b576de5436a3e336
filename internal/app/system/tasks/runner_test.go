package tasks_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/leadcentral/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunnerRunsJobAtStartup(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: time.Hour, // only the startup run should fire
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	if runs.Load() != 1 {
		t.Errorf("expected exactly the startup run, got %d", runs.Load())
	}
}

func TestRunnerStopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck-job",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			// Ignores ctx, which is exactly what Stop's deadline guards
			// against.
			time.Sleep(5 * time.Second)
			return nil
		},
	})

	runner.Start()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := runner.Stop(ctx); err != context.DeadlineExceeded {
		t.Errorf("Stop() = %v, want context.DeadlineExceeded", err)
	}
}

func TestRunnerStopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	cancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "ctx-aware",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("job context was never cancelled")
	}
}

func TestRunnerMultipleJobs(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var sweeps, retentions atomic.Int32
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			sweeps.Add(1)
			return nil
		},
	})
	runner.Register(tasks.Job{
		Name:     "stats-retention",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			retentions.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	if sweeps.Load() < 2 {
		t.Errorf("session-sweep ran %d times, want at least 2", sweeps.Load())
	}
	if retentions.Load() < 2 {
		t.Errorf("stats-retention ran %d times, want at least 2", retentions.Load())
	}
}

func TestRunnerRunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	// The runner is never started; RunOnce fires the job directly.
	if err := runner.RunOnce(context.Background(), "session-sweep"); err != nil {
		t.Errorf("RunOnce() returned error: %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("job ran %d times, want 1", runs.Load())
	}

	if err := runner.RunOnce(context.Background(), "no-such-job"); err != nil {
		t.Errorf("RunOnce() for unknown job = %v, want nil", err)
	}
}
