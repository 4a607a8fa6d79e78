// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/surveydash/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner runs each registered job on its own ticker until stopped.
type Runner struct {
	log    *zap.Logger
	jobs   []Job
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRunner creates an empty runner.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Add registers a job. Jobs with a non-positive interval are ignored.
// Add must be called before Start.
func (r *Runner) Add(j Job) {
	if j.Interval <= 0 {
		r.log.Debug("background job disabled", zap.String("job", j.Name))
		return
	}
	r.jobs = append(r.jobs, j)
}

// Len returns the number of registered jobs.
func (r *Runner) Len() int {
	return len(r.jobs)
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job to stop and waits for running iterations to finish.
// It is safe to call more than once.
func (r *Runner) Stop() {
	r.once.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		if len(r.jobs) > 0 {
			r.log.Info("background jobs stopped")
		}
	})
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(j)
		}
	}
}

func (r *Runner) runOnce(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Refresh())
	defer cancel()

	if err := j.Run(ctx); err != nil {
		r.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
