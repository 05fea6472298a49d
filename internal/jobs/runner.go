package jobs

import (
	"context"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/logging"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/robfig/cron/v3"
)

// DefaultInterval is the executor polling cadence.
const DefaultInterval = time.Minute

// Runner drives a Worker on a fixed cadence using a cron scheduler.
type Runner struct {
	worker   *Worker
	cron     *cron.Cron
	logger   interfaces.Logger
	interval time.Duration
	entryID  cron.EntryID
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger attaches a logger.
func WithRunnerLogger(logger interfaces.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInterval changes the polling cadence.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewRunner wraps the worker in a periodic job.
func NewRunner(worker *Worker, opts ...RunnerOption) *Runner {
	r := &Runner{
		worker:   worker,
		cron:     cron.New(),
		logger:   logging.NoOp(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers the periodic job and begins polling. It returns once
// the scheduler is running.
func (r *Runner) Start(ctx context.Context) error {
	id, err := r.cron.AddFunc("@every "+r.interval.String(), func() {
		if err := r.worker.Process(ctx); err != nil {
			r.logger.Error("task executor run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	r.entryID = id
	r.cron.Start()
	r.logger.Info("task executor started", "interval", r.interval.String())
	return nil
}

// Stop halts polling and waits for an in-flight run to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("task executor stopped")
}
