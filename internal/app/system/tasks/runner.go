// Package tasks runs the periodic maintenance jobs: session cleanup,
// idle-session closing, and capture-stats retention. Each job runs on its
// own ticker; the runner owns their lifecycle so shutdown can wait for
// in-flight work.
package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic task. Run is invoked once at startup and then every
// Interval until the runner stops.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner executes registered jobs on their intervals.
type Runner struct {
	logger  *zap.Logger
	jobs    []Job
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	active  atomic.Int32
	inFlight sync.Map // job name -> struct{}, set while a Run call is live
}

func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Register adds a job. Register before Start; the runner does not pick up
// jobs added later.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one goroutine per registered job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("task runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop cancels all job contexts and waits for in-flight runs to finish.
// If ctx expires first, Stop returns ctx.Err() and logs which jobs were
// still executing.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		var stuck []string
		r.inFlight.Range(func(key, _ any) bool {
			stuck = append(stuck, key.(string))
			return true
		})
		r.logger.Warn("task runner stop timed out",
			zap.Strings("still_running", stuck),
			zap.Int32("active", r.active.Load()))
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	// First run happens at startup, not one interval later. The cleanup
	// jobs should not wait an hour before their first sweep after a
	// restart.
	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job loop exiting", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.active.Add(1)
	r.inFlight.Store(job.Name, struct{}{})
	defer func() {
		r.active.Add(-1)
		r.inFlight.Delete(job.Name)
	}()

	start := time.Now()

	if err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			// Shutdown cancellation is expected, not a failure.
			r.logger.Debug("job cancelled",
				zap.String("job", job.Name),
				zap.Duration("took", time.Since(start)))
			return
		}
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}

	r.logger.Debug("job done",
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(start)))
}

// RunOnce fires a registered job by name outside its schedule. Unknown
// names are a no-op.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return nil
}
