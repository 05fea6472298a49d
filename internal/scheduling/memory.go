package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTaskStore is an in-memory TaskStore for embedded use and tests.
type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*ScheduledTask
	now   func() time.Time
	genID func() uuid.UUID
}

// MemoryOption configures a MemoryTaskStore.
type MemoryOption func(*MemoryTaskStore)

// WithMemoryClock overrides the store clock, mainly for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryTaskStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMemoryIDGenerator overrides task ID generation.
func WithMemoryIDGenerator(gen func() uuid.UUID) MemoryOption {
	return func(s *MemoryTaskStore) {
		if gen != nil {
			s.genID = gen
		}
	}
}

func NewMemoryTaskStore(opts ...MemoryOption) *MemoryTaskStore {
	s := &MemoryTaskStore{
		tasks: make(map[uuid.UUID]*ScheduledTask),
		now:   time.Now,
		genID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryTaskStore) Create(ctx context.Context, task *ScheduledTask) (*ScheduledTask, error) {
	if task == nil || task.TargetType == "" || task.TargetID == uuid.Nil {
		return nil, validationError(ErrTargetRequired, "task requires a target")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := task.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = s.genID()
	}
	if stored.Status == "" {
		stored.Status = TaskStatusPending
	}
	if stored.MaxAttempts <= 0 {
		stored.MaxAttempts = DefaultMaxAttempts
	}
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.tasks[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, notFoundError(ErrTaskNotFound, "task not found")
	}
	return task.Clone(), nil
}

func (s *MemoryTaskStore) List(ctx context.Context, filter TaskFilter) ([]*ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ScheduledTask, 0)
	for _, task := range s.tasks {
		if filter.matches(task) {
			out = append(out, task.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryTaskStore) CancelPending(ctx context.Context, targetType string, targetID uuid.UUID, types ...TaskType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := s.now()
	for _, task := range s.tasks {
		if task.TargetType != targetType || task.TargetID != targetID {
			continue
		}
		if task.Status != TaskStatusPending {
			continue
		}
		if len(types) > 0 && !containsType(types, task.TaskType) {
			continue
		}
		task.Status = TaskStatusCancelled
		task.UpdatedAt = now
		count++
	}
	return count, nil
}

func (s *MemoryTaskStore) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time) (*ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, notFoundError(ErrTaskNotFound, "task not found")
	}
	if task.Status != TaskStatusPending {
		return nil, conflictError(ErrTaskNotPending, "only pending tasks can be rescheduled")
	}
	task.ScheduledFor = runAt
	task.UpdatedAt = s.now()
	return task.Clone(), nil
}

func (s *MemoryTaskStore) ClaimDue(ctx context.Context, until time.Time, limit int) ([]*ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*ScheduledTask, 0)
	for _, task := range s.tasks {
		if task.Status == TaskStatusPending && !task.ScheduledFor.After(until) {
			due = append(due, task)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ScheduledFor.Equal(due[j].ScheduledFor) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	now := s.now()
	claimed := make([]*ScheduledTask, 0, len(due))
	for _, task := range due {
		task.Status = TaskStatusProcessing
		task.Attempts++
		task.LastAttemptAt = &now
		task.UpdatedAt = now
		claimed = append(claimed, task.Clone())
	}
	return claimed, nil
}

func (s *MemoryTaskStore) Complete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return notFoundError(ErrTaskNotFound, "task not found")
	}
	now := s.now()
	task.Status = TaskStatusCompleted
	task.CompletedAt = &now
	task.ErrorMessage = ""
	task.UpdatedAt = now
	return nil
}

func (s *MemoryTaskStore) Fail(ctx context.Context, id uuid.UUID, cause error) (*ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, notFoundError(ErrTaskNotFound, "task not found")
	}
	if cause != nil {
		task.ErrorMessage = cause.Error()
	}
	if task.Attempts >= task.MaxAttempts {
		task.Status = TaskStatusFailed
	} else {
		task.Status = TaskStatusPending
	}
	task.UpdatedAt = s.now()
	return task.Clone(), nil
}

func (s *MemoryTaskStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func containsType(types []TaskType, t TaskType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
