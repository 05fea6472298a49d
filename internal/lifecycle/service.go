package lifecycle

import (
	"context"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/internal/logging"
	"github.com/KCuppens/bedrock-cms/internal/scheduling"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
)

// Service drives content through the moderation and publishing state
// machine. Guards run before any mutation, so a rejected transition
// leaves both the content and the task store untouched.
type Service interface {
	SubmitForReview(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error)
	Approve(ctx context.Context, ref interfaces.TargetRef, reviewer uuid.UUID, notes string) (*interfaces.ContentState, error)
	Reject(ctx context.Context, ref interfaces.TargetRef, reviewer uuid.UUID, notes string) (*interfaces.ContentState, error)
	Publish(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error)
	Unpublish(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error)
	Schedule(ctx context.Context, ref interfaces.TargetRef, publishAt time.Time, unpublishAt *time.Time, actor uuid.UUID) (*scheduling.ScheduleResult, error)
	Unschedule(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error)
}

type service struct {
	registry  *content.Registry
	scheduler scheduling.Service
	audit     interfaces.AuditSink
	logger    interfaces.Logger
	now       func() time.Time
}

// Option configures the lifecycle service.
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

// WithAuditSink attaches the audit sink that receives one entry per
// transition.
func WithAuditSink(sink interfaces.AuditSink) Option {
	return func(s *service) {
		if sink != nil {
			s.audit = sink
		}
	}
}

// NewService builds the lifecycle service. The scheduler supplies both
// task operations and the transaction boundary shared with content
// writes.
func NewService(registry *content.Registry, scheduler scheduling.Service, opts ...Option) Service {
	s := &service{
		registry:  registry,
		scheduler: scheduler,
		audit:     noopSink{},
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SubmitForReview(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error) {
	return s.transition(ctx, ref, actor, func(state *interfaces.ContentState) error {
		if !CanTransition(TransitionSubmitForReview, domain.Status(state.Status)) {
			return validationError(ErrNotDraftOrRejected, "must be draft or rejected to submit for review")
		}
		state.Status = string(domain.StatusPendingReview)
		state.ReviewedBy = nil
		state.ReviewNotes = ""
		return nil
	}, interfaces.AuditActionSubmittedForReview, nil)
}

func (s *service) Approve(ctx context.Context, ref interfaces.TargetRef, reviewer uuid.UUID, notes string) (*interfaces.ContentState, error) {
	if reviewer == uuid.Nil {
		return nil, validationError(ErrReviewerRequired, "reviewer is required")
	}
	return s.transition(ctx, ref, reviewer, func(state *interfaces.ContentState) error {
		if !CanTransition(TransitionApprove, domain.Status(state.Status)) {
			return validationError(ErrNotPendingReview, "must be pending_review to approve")
		}
		state.Status = string(domain.StatusApproved)
		state.ReviewedBy = &reviewer
		state.ReviewNotes = notes
		return nil
	}, interfaces.AuditActionApproved, map[string]any{"notes": notes})
}

func (s *service) Reject(ctx context.Context, ref interfaces.TargetRef, reviewer uuid.UUID, notes string) (*interfaces.ContentState, error) {
	if reviewer == uuid.Nil {
		return nil, validationError(ErrReviewerRequired, "reviewer is required")
	}
	if notes == "" {
		return nil, validationError(ErrNotesRequired, "rejection notes are required")
	}
	return s.transition(ctx, ref, reviewer, func(state *interfaces.ContentState) error {
		if !CanTransition(TransitionReject, domain.Status(state.Status)) {
			return validationError(ErrNotPendingReview, "must be pending_review to reject")
		}
		state.Status = string(domain.StatusRejected)
		state.ReviewedBy = &reviewer
		state.ReviewNotes = notes
		return nil
	}, interfaces.AuditActionRejected, map[string]any{"notes": notes})
}

func (s *service) Publish(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "publish requires a target")
	}
	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	var result *interfaces.ContentState
	store := s.scheduler.Store()
	err = store.InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		from := state.Status

		// Any pending tasks would republish later; drop them now.
		if _, err := store.CancelPending(ctx, ref.Type, ref.ID); err != nil {
			return err
		}

		now := s.now()
		state.Status = string(domain.StatusPublished)
		state.PublishedAt = &now
		if actor != uuid.Nil {
			state.PublishedBy = &actor
		}
		state.ClearScheduling()
		if err := resolver.Apply(ctx, state, actor); err != nil {
			return err
		}
		result = state
		return s.record(ctx, actor, interfaces.AuditActionPublish, ref, map[string]any{"from": from})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("published content", "target", ref.String())
	return result, nil
}

func (s *service) Unpublish(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "unpublish requires a target")
	}
	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	var result *interfaces.ContentState
	store := s.scheduler.Store()
	err = store.InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		if !CanTransition(TransitionUnpublish, domain.Status(state.Status)) {
			return validationError(ErrNotPublished, "must be published to unpublish")
		}

		if _, err := store.CancelPending(ctx, ref.Type, ref.ID, scheduling.TaskTypeUnpublish); err != nil {
			return err
		}

		state.Status = string(domain.StatusDraft)
		state.PublishedAt = nil
		state.UnpublishAt = nil
		if err := resolver.Apply(ctx, state, actor); err != nil {
			return err
		}
		result = state
		return s.record(ctx, actor, interfaces.AuditActionUnpublish, ref, nil)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("unpublished content", "target", ref.String())
	return result, nil
}

func (s *service) Schedule(ctx context.Context, ref interfaces.TargetRef, publishAt time.Time, unpublishAt *time.Time, actor uuid.UUID) (*scheduling.ScheduleResult, error) {
	var result *scheduling.ScheduleResult
	err := s.scheduler.Store().InTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.scheduler.SchedulePublish(ctx, ref, publishAt, unpublishAt, actor)
		if err != nil {
			return err
		}
		metadata := map[string]any{
			"publish_at": publishAt,
			"task_id":    result.PublishTask.ID.String(),
		}
		if result.UnpublishTask != nil {
			metadata["unpublish_at"] = *unpublishAt
			metadata["unpublish_task_id"] = result.UnpublishTask.ID.String()
		}
		return s.record(ctx, actor, interfaces.AuditActionSchedule, ref, metadata)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Unschedule(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID) (*interfaces.ContentState, error) {
	var result *interfaces.ContentState
	err := s.scheduler.Store().InTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.scheduler.CancelScheduling(ctx, ref, actor, false)
		if err != nil {
			return err
		}
		return s.record(ctx, actor, interfaces.AuditActionUnschedule, ref, nil)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transition runs the common load/guard/mutate/persist/audit path for
// transitions that touch only the content record.
func (s *service) transition(ctx context.Context, ref interfaces.TargetRef, actor uuid.UUID, mutate func(*interfaces.ContentState) error, action string, metadata map[string]any) (*interfaces.ContentState, error) {
	if ref.IsZero() {
		return nil, validationError(ErrTargetRequired, "transition requires a target")
	}
	resolver, err := s.registry.Resolve(ref.Type)
	if err != nil {
		return nil, err
	}

	var result *interfaces.ContentState
	err = s.scheduler.Store().InTransaction(ctx, func(ctx context.Context) error {
		state, err := resolver.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		from := state.Status
		if err := mutate(state); err != nil {
			return err
		}
		if err := resolver.Apply(ctx, state, actor); err != nil {
			return err
		}
		result = state

		meta := map[string]any{"from": from, "to": state.Status}
		for k, v := range metadata {
			meta[k] = v
		}
		return s.record(ctx, actor, action, ref, meta)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("content transition",
		"target", ref.String(),
		"action", action,
		"status", result.Status,
	)
	return result, nil
}

func (s *service) record(ctx context.Context, actor uuid.UUID, action string, ref interfaces.TargetRef, metadata map[string]any) error {
	entry := interfaces.AuditEntry{
		Action:     action,
		Target:     ref,
		OccurredAt: s.now(),
		Metadata:   metadata,
	}
	if actor != uuid.Nil {
		entry.Actor = &actor
	}
	return s.audit.Record(ctx, entry)
}

type noopSink struct{}

func (noopSink) Record(context.Context, interfaces.AuditEntry) error { return nil }
