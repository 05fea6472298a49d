package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStore persists scheduled tasks. Implementations must make ClaimDue
// safe to call from concurrent executor replicas: a due task is handed to
// at most one caller.
type TaskStore interface {
	Create(ctx context.Context, task *ScheduledTask) (*ScheduledTask, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduledTask, error)
	List(ctx context.Context, filter TaskFilter) ([]*ScheduledTask, error)

	// CancelPending marks the target's pending tasks cancelled and returns
	// how many were affected. With no types given it cancels every task
	// type for the target.
	CancelPending(ctx context.Context, targetType string, targetID uuid.UUID, types ...TaskType) (int, error)

	// Reschedule moves a pending task to a new run time. Tasks in any
	// other status yield ErrTaskNotPending.
	Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time) (*ScheduledTask, error)

	// ClaimDue atomically selects up to limit pending tasks due at or
	// before until, marks them processing, and increments their attempt
	// counters. Claimed tasks are invisible to other callers.
	ClaimDue(ctx context.Context, until time.Time, limit int) ([]*ScheduledTask, error)

	// Complete marks a processing task completed.
	Complete(ctx context.Context, id uuid.UUID) error

	// Fail records a failed attempt. The task returns to pending while
	// attempts remain, otherwise it is marked failed for good.
	Fail(ctx context.Context, id uuid.UUID, cause error) (*ScheduledTask, error)

	// InTransaction runs fn with task and content writes joined in a
	// single transaction where the backing store supports one.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
