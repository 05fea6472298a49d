package contentcmd

import (
	"context"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/commands"
	"github.com/KCuppens/bedrock-cms/internal/lifecycle"
	"github.com/KCuppens/bedrock-cms/internal/scheduling"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	scheduleContentMessageType   = "cms.content.schedule"
	unscheduleContentMessageType = "cms.content.unschedule"
	rescheduleTaskMessageType    = "cms.content.reschedule_task"
)

// ScheduleContentCommand sets a publish window for a content entry.
type ScheduleContentCommand struct {
	TargetType  string     `json:"target_type"`
	TargetID    uuid.UUID  `json:"target_id"`
	PublishAt   time.Time  `json:"publish_at"`
	UnpublishAt *time.Time `json:"unpublish_at,omitempty"`
	ActorID     uuid.UUID  `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (ScheduleContentCommand) Type() string { return scheduleContentMessageType }

// Validate ensures required fields and basic payload consistency. Time
// ordering against the clock is enforced by the scheduling service.
func (m ScheduleContentCommand) Validate() error {
	errs := targetErrors(scheduleContentMessageType, m.TargetType, m.TargetID)
	if m.PublishAt.IsZero() {
		errs["publish_at"] = validation.NewError(scheduleContentMessageType+".publish_at_required", "publish_at is required")
	}
	if m.UnpublishAt != nil && m.UnpublishAt.IsZero() {
		errs["unpublish_at"] = validation.NewError(scheduleContentMessageType+".unpublish_at_invalid", "unpublish_at must be a valid timestamp when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ScheduleContentHandler schedules publication via the lifecycle service.
type ScheduleContentHandler struct {
	inner *commands.Handler[ScheduleContentCommand]
}

func NewScheduleContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ScheduleContentCommand]) *ScheduleContentHandler {
	exec := func(ctx context.Context, msg ScheduleContentCommand) error {
		_, err := service.Schedule(ctx, targetRef(msg.TargetType, msg.TargetID), msg.PublishAt, msg.UnpublishAt, msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[ScheduleContentCommand]{
		commands.WithLogger[ScheduleContentCommand](logger),
		commands.WithOperation[ScheduleContentCommand]("content.schedule"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ScheduleContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ScheduleContentCommand].
func (h *ScheduleContentHandler) Execute(ctx context.Context, msg ScheduleContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnscheduleContentCommand cancels pending scheduled tasks for a target.
type UnscheduleContentCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (UnscheduleContentCommand) Type() string { return unscheduleContentMessageType }

// Validate ensures the message carries a target before reaching handlers.
func (m UnscheduleContentCommand) Validate() error {
	return validateTarget(unscheduleContentMessageType, m.TargetType, m.TargetID)
}

// UnscheduleContentHandler cancels scheduling via the lifecycle service.
type UnscheduleContentHandler struct {
	inner *commands.Handler[UnscheduleContentCommand]
}

func NewUnscheduleContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnscheduleContentCommand]) *UnscheduleContentHandler {
	exec := func(ctx context.Context, msg UnscheduleContentCommand) error {
		_, err := service.Unschedule(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[UnscheduleContentCommand]{
		commands.WithLogger[UnscheduleContentCommand](logger),
		commands.WithOperation[UnscheduleContentCommand]("content.unschedule"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnscheduleContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UnscheduleContentCommand].
func (h *UnscheduleContentHandler) Execute(ctx context.Context, msg UnscheduleContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RescheduleTaskCommand moves a pending task to a new run time.
type RescheduleTaskCommand struct {
	TaskID  uuid.UUID `json:"task_id"`
	RunAt   time.Time `json:"run_at"`
	ActorID uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (RescheduleTaskCommand) Type() string { return rescheduleTaskMessageType }

// Validate ensures task and run time are present.
func (m RescheduleTaskCommand) Validate() error {
	errs := validation.Errors{}
	if m.TaskID == uuid.Nil {
		errs["task_id"] = validation.NewError(rescheduleTaskMessageType+".task_id_required", "task_id is required")
	}
	if m.RunAt.IsZero() {
		errs["run_at"] = validation.NewError(rescheduleTaskMessageType+".run_at_required", "run_at is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RescheduleTaskHandler moves tasks via the scheduling service.
type RescheduleTaskHandler struct {
	inner *commands.Handler[RescheduleTaskCommand]
}

func NewRescheduleTaskHandler(service scheduling.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RescheduleTaskCommand]) *RescheduleTaskHandler {
	exec := func(ctx context.Context, msg RescheduleTaskCommand) error {
		_, err := service.RescheduleTask(ctx, msg.TaskID, msg.RunAt, msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[RescheduleTaskCommand]{
		commands.WithLogger[RescheduleTaskCommand](logger),
		commands.WithOperation[RescheduleTaskCommand]("content.reschedule_task"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RescheduleTaskHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RescheduleTaskCommand].
func (h *RescheduleTaskHandler) Execute(ctx context.Context, msg RescheduleTaskCommand) error {
	return h.inner.Execute(ctx, msg)
}
