package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/internal/logging"
	"github.com/KCuppens/bedrock-cms/internal/scheduling"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
)

// DefaultBatchSize bounds how many due tasks one Process call claims.
const DefaultBatchSize = 50

// Worker executes due scheduled tasks. It is safe to run from several
// replicas at once: the task store hands each due task to exactly one
// claimant, and every task is executed in isolation so one failure never
// aborts the rest of the batch.
type Worker struct {
	store    scheduling.TaskStore
	registry *content.Registry
	audit    interfaces.AuditSink
	logger   interfaces.Logger
	now      func() time.Time
	batch    int
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger attaches a logger.
func WithWorkerLogger(logger interfaces.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWorkerClock overrides the worker clock, mainly for tests.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWorkerAuditSink attaches the sink receiving task outcome entries.
func WithWorkerAuditSink(sink interfaces.AuditSink) WorkerOption {
	return func(w *Worker) {
		if sink != nil {
			w.audit = sink
		}
	}
}

// WithBatchSize caps the number of tasks claimed per run.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

// NewWorker builds a Worker over the given task store and target
// registry.
func NewWorker(store scheduling.TaskStore, registry *content.Registry, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:    store,
		registry: registry,
		audit:    noopSink{},
		logger:   logging.NoOp(),
		now:      time.Now,
		batch:    DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process claims one batch of due tasks and executes them. It returns an
// error only when the claim itself fails; individual task failures are
// recorded on the task and logged.
func (w *Worker) Process(ctx context.Context) error {
	tasks, err := w.store.ClaimDue(ctx, w.now(), w.batch)
	if err != nil {
		return fmt.Errorf("claim due tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}
	w.logger.Debug("claimed due tasks", "count", len(tasks))

	for _, task := range tasks {
		if err := w.execute(ctx, task); err != nil {
			w.handleFailure(ctx, task, err)
		}
	}
	return nil
}

// execute applies the task's effect to its target and completes the task
// in a single transaction: either both writes land or neither does.
func (w *Worker) execute(ctx context.Context, task *scheduling.ScheduledTask) error {
	resolver, err := w.registry.Resolve(task.TargetType)
	if err != nil {
		return err
	}

	return w.store.InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, task.TargetID)
		if err != nil {
			return err
		}

		now := w.now()
		switch task.TaskType {
		case scheduling.TaskTypePublish:
			state.Status = string(domain.StatusPublished)
			state.PublishedAt = &now
			if task.CreatedBy != nil {
				state.PublishedBy = task.CreatedBy
			}
			state.PublishAt = nil
		case scheduling.TaskTypeUnpublish:
			state.Status = string(domain.StatusDraft)
			state.UnpublishAt = nil
		default:
			return fmt.Errorf("unknown task type %q", task.TaskType)
		}

		if err := resolver.Apply(ctx, state, w.taskActor(task)); err != nil {
			return err
		}
		if err := w.store.Complete(ctx, task.ID); err != nil {
			return err
		}

		entry := interfaces.AuditEntry{
			Actor:      task.CreatedBy,
			Action:     w.actionFor(task.TaskType),
			Target:     task.Target(),
			OccurredAt: now,
			Metadata: map[string]any{
				"task_id":  task.ID.String(),
				"attempts": task.Attempts,
			},
		}
		if err := w.audit.Record(ctx, entry); err != nil {
			return err
		}

		w.logger.Info("executed scheduled task",
			"task_id", task.ID,
			"task_type", task.TaskType,
			"target", task.Target().String(),
		)
		return nil
	})
}

// handleFailure records the failed attempt after the effect transaction
// rolled back. Tasks out of attempts go terminal and emit an audit entry.
func (w *Worker) handleFailure(ctx context.Context, task *scheduling.ScheduledTask, cause error) {
	w.logger.Error("scheduled task attempt failed",
		"task_id", task.ID,
		"task_type", task.TaskType,
		"target", task.Target().String(),
		"attempt", task.Attempts,
		"error", cause,
	)

	failed, err := w.store.Fail(ctx, task.ID, cause)
	if err != nil {
		w.logger.Error("record task failure", "task_id", task.ID, "error", err)
		return
	}
	if failed.Status != scheduling.TaskStatusFailed {
		return
	}

	entry := interfaces.AuditEntry{
		Actor:      task.CreatedBy,
		Action:     interfaces.AuditActionTaskFailed,
		Target:     task.Target(),
		OccurredAt: w.now(),
		Metadata: map[string]any{
			"task_id":   task.ID.String(),
			"task_type": string(task.TaskType),
			"attempts":  failed.Attempts,
			"error":     cause.Error(),
		},
	}
	if err := w.audit.Record(ctx, entry); err != nil {
		w.logger.Error("record task failure audit entry", "task_id", task.ID, "error", err)
	}
}

func (w *Worker) taskActor(task *scheduling.ScheduledTask) uuid.UUID {
	if task.CreatedBy != nil {
		return *task.CreatedBy
	}
	return uuid.Nil
}

func (w *Worker) actionFor(t scheduling.TaskType) string {
	if t == scheduling.TaskTypeUnpublish {
		return interfaces.AuditActionUnpublish
	}
	return interfaces.AuditActionPublish
}

type noopSink struct{}

func (noopSink) Record(context.Context, interfaces.AuditEntry) error { return nil }
