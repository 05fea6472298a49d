package scheduling

import (
	"time"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TaskType names the effect a scheduled task applies when it runs.
type TaskType string

const (
	TaskTypePublish   TaskType = "publish"
	TaskTypeUnpublish TaskType = "unpublish"
)

// TaskStatus tracks a task through its lifecycle. Completed, failed and
// cancelled are terminal.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// DefaultMaxAttempts bounds how many times the executor retries a task
// before marking it failed.
const DefaultMaxAttempts = 3

// ScheduledTask is a durable unit of deferred work against a single
// content target.
type ScheduledTask struct {
	bun.BaseModel `bun:"table:scheduled_tasks,alias:st"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	TargetType    string     `bun:"target_type,notnull" json:"target_type"`
	TargetID      uuid.UUID  `bun:"target_id,notnull,type:uuid" json:"target_id"`
	TaskType      TaskType   `bun:"task_type,notnull" json:"task_type"`
	ScheduledFor  time.Time  `bun:"scheduled_for,notnull" json:"scheduled_for"`
	Status        TaskStatus `bun:"status,notnull,default:'pending'" json:"status"`
	Attempts      int        `bun:"attempts,notnull,default:0" json:"attempts"`
	MaxAttempts   int        `bun:"max_attempts,notnull,default:3" json:"max_attempts"`
	LastAttemptAt *time.Time `bun:"last_attempt_at" json:"last_attempt_at,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage  string     `bun:"error_message" json:"error_message,omitempty"`
	CreatedBy     *uuid.UUID `bun:"created_by,type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// Target returns the content reference this task operates on.
func (t *ScheduledTask) Target() interfaces.TargetRef {
	return interfaces.TargetRef{Type: t.TargetType, ID: t.TargetID}
}

// Terminal reports whether the task can no longer run.
func (t *ScheduledTask) Terminal() bool {
	switch t.Status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (t *ScheduledTask) Clone() *ScheduledTask {
	if t == nil {
		return nil
	}
	out := *t
	out.LastAttemptAt = cloneTimePtr(t.LastAttemptAt)
	out.CompletedAt = cloneTimePtr(t.CompletedAt)
	if t.CreatedBy != nil {
		v := *t.CreatedBy
		out.CreatedBy = &v
	}
	return &out
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TaskFilter narrows List queries. Zero values match everything.
type TaskFilter struct {
	TargetType string
	TargetID   uuid.UUID
	TaskType   TaskType
	Statuses   []TaskStatus
	DueBefore  *time.Time
	Limit      int
	Offset     int
}

func (f TaskFilter) matches(t *ScheduledTask) bool {
	if f.TargetType != "" && t.TargetType != f.TargetType {
		return false
	}
	if f.TargetID != uuid.Nil && t.TargetID != f.TargetID {
		return false
	}
	if f.TaskType != "" && t.TaskType != f.TaskType {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DueBefore != nil && t.ScheduledFor.After(*f.DueBefore) {
		return false
	}
	return true
}
