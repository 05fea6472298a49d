package scheduling

import (
	"context"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/internal/logging"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
)

// ScheduleResult reports the tasks created by SchedulePublish.
type ScheduleResult struct {
	State         *interfaces.ContentState
	PublishTask   *ScheduledTask
	UnpublishTask *ScheduledTask
}

// Service is the single writer for scheduled tasks. Content timestamps
// and task rows always change together inside one store transaction.
type Service interface {
	SchedulePublish(ctx context.Context, ref interfaces.TargetRef, publishAt time.Time, unpublishAt *time.Time, actor uuid.UUID) (*ScheduleResult, error)
	ScheduleUnpublish(ctx context.Context, ref interfaces.TargetRef, unpublishAt time.Time, actor uuid.UUID) (*ScheduledTask, error)
	CancelScheduling(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID, skipStatusRevert bool) (*interfaces.ContentState, error)
	RescheduleTask(ctx context.Context, taskID uuid.UUID, runAt time.Time, actor uuid.UUID) (*ScheduledTask, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*ScheduledTask, error)
	Store() TaskStore
}

type service struct {
	store       TaskStore
	registry    *content.Registry
	logger      interfaces.Logger
	now         func() time.Time
	maxAttempts int
}

// Option configures the scheduling service.
type Option func(*service)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the service clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxAttempts sets the retry budget stamped on new tasks.
func WithMaxAttempts(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewService builds a scheduling service over the given task store and
// target registry.
func NewService(store TaskStore, registry *content.Registry, opts ...Option) Service {
	s := &service{
		store:       store,
		registry:    registry,
		logger:      logging.NoOp(),
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Store() TaskStore {
	return s.store
}

func (s *service) SchedulePublish(ctx context.Context, ref interfaces.TargetRef, publishAt time.Time, unpublishAt *time.Time, actor uuid.UUID) (*ScheduleResult, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "schedule requires a target")
	}
	now := s.now()
	if !publishAt.After(now) {
		return nil, validationError(ErrPublishAtNotFuture, "publish time must be in the future")
	}
	if unpublishAt != nil && !unpublishAt.After(publishAt) {
		return nil, validationError(ErrUnpublishBeforePublish, "unpublish time must be after publish time")
	}

	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	result := &ScheduleResult{}
	err = s.store.InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}

		// Rescheduling replaces any prior plan for this target.
		if _, err := s.store.CancelPending(ctx, ref.Type, ref.ID); err != nil {
			return err
		}

		publishTask, err := s.store.Create(ctx, s.newTask(ref, TaskTypePublish, publishAt, actor))
		if err != nil {
			return err
		}
		result.PublishTask = publishTask

		if unpublishAt != nil {
			unpublishTask, err := s.store.Create(ctx, s.newTask(ref, TaskTypeUnpublish, *unpublishAt, actor))
			if err != nil {
				return err
			}
			result.UnpublishTask = unpublishTask
		}

		state.Status = string(domain.StatusScheduled)
		state.PublishAt = &publishAt
		state.UnpublishAt = cloneTimePtr(unpublishAt)
		if err := resolver.Apply(ctx, state, actor); err != nil {
			return err
		}
		result.State = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scheduled publish",
		"target", ref.String(),
		"publish_at", publishAt,
		"task_id", result.PublishTask.ID,
	)
	return result, nil
}

func (s *service) ScheduleUnpublish(ctx context.Context, ref interfaces.TargetRef, unpublishAt time.Time, actor uuid.UUID) (*ScheduledTask, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "schedule requires a target")
	}
	if !unpublishAt.After(s.now()) {
		return nil, validationError(ErrUnpublishAtNotFuture, "unpublish time must be in the future")
	}

	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	var task *ScheduledTask
	err = s.store.InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		if state.Status != string(domain.StatusPublished) {
			return validationError(ErrNotPublished, "content must be published to schedule unpublish")
		}

		if _, err := s.store.CancelPending(ctx, ref.Type, ref.ID, TaskTypeUnpublish); err != nil {
			return err
		}

		task, err = s.store.Create(ctx, s.newTask(ref, TaskTypeUnpublish, unpublishAt, actor))
		if err != nil {
			return err
		}

		state.UnpublishAt = &unpublishAt
		return resolver.Apply(ctx, state, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scheduled unpublish",
		"target", ref.String(),
		"unpublish_at", unpublishAt,
		"task_id", task.ID,
	)
	return task, nil
}

func (s *service) CancelScheduling(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID, skipStatusRevert bool) (*interfaces.ContentState, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "cancel requires a target")
	}
	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	var result *interfaces.ContentState
	err = s.store.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.CancelPending(ctx, ref.Type, ref.ID); err != nil {
			return err
		}

		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		state.ClearScheduling()
		if !skipStatusRevert && state.Status == string(domain.StatusScheduled) {
			state.Status = string(domain.StatusDraft)
		}
		if err := resolver.Apply(ctx, state, actor); err != nil {
			return err
		}
		result = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cancelled scheduling", "target", ref.String())
	return result, nil
}

func (s *service) RescheduleTask(ctx context.Context, taskID uuid.UUID, runAt time.Time, actor uuid.UUID) (*ScheduledTask, error) {
	if !runAt.After(s.now()) {
		return nil, validationError(ErrPublishAtNotFuture, "new run time must be in the future")
	}

	var task *ScheduledTask
	err := s.store.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.store.Reschedule(ctx, taskID, runAt)
		if err != nil {
			return err
		}

		resolver, err := s.registry.Resolve(task.TargetType)
		if err != nil {
			return err
		}
		state, err := resolver.Load(ctx, task.TargetID)
		if err != nil {
			return err
		}
		switch task.TaskType {
		case TaskTypePublish:
			if state.UnpublishAt != nil && !state.UnpublishAt.After(runAt) {
				return validationError(ErrUnpublishBeforePublish, "unpublish time must be after publish time")
			}
			state.PublishAt = &runAt
		case TaskTypeUnpublish:
			if state.PublishAt != nil && !runAt.After(*state.PublishAt) {
				return validationError(ErrUnpublishBeforePublish, "unpublish time must be after publish time")
			}
			state.UnpublishAt = &runAt
		}
		return resolver.Apply(ctx, state, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rescheduled task",
		"task_id", task.ID,
		"task_type", task.TaskType,
		"scheduled_for", runAt,
	)
	return task, nil
}

func (s *service) ListTasks(ctx context.Context, filter TaskFilter) ([]*ScheduledTask, error) {
	return s.store.List(ctx, filter)
}

func (s *service) newTask(ref interfaces.TargetRef, taskType TaskType, runAt time.Time, actor uuid.UUID) *ScheduledTask {
	task := &ScheduledTask{
		TargetType:   ref.Type,
		TargetID:     ref.ID,
		TaskType:     taskType,
		ScheduledFor: runAt,
		Status:       TaskStatusPending,
		MaxAttempts:  s.maxAttempts,
	}
	if actor != uuid.Nil {
		task.CreatedBy = &actor
	}
	return task
}
