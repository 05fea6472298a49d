package contentcmd

import (
	"context"
	"strings"

	"github.com/KCuppens/bedrock-cms/internal/commands"
	"github.com/KCuppens/bedrock-cms/internal/lifecycle"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	submitForReviewMessageType = "cms.content.submit_for_review"
	approveContentMessageType  = "cms.content.approve"
	rejectContentMessageType   = "cms.content.reject"
)

// SubmitForReviewCommand moves a draft or rejected item into review.
type SubmitForReviewCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (SubmitForReviewCommand) Type() string { return submitForReviewMessageType }

// Validate ensures the message carries a target before reaching handlers.
func (m SubmitForReviewCommand) Validate() error {
	return validateTarget(submitForReviewMessageType, m.TargetType, m.TargetID)
}

// SubmitForReviewHandler submits content for review via the lifecycle service.
type SubmitForReviewHandler struct {
	inner *commands.Handler[SubmitForReviewCommand]
}

func NewSubmitForReviewHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitForReviewCommand]) *SubmitForReviewHandler {
	exec := func(ctx context.Context, msg SubmitForReviewCommand) error {
		_, err := service.SubmitForReview(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[SubmitForReviewCommand]{
		commands.WithLogger[SubmitForReviewCommand](logger),
		commands.WithOperation[SubmitForReviewCommand]("content.submit_for_review"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SubmitForReviewHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SubmitForReviewCommand].
func (h *SubmitForReviewHandler) Execute(ctx context.Context, msg SubmitForReviewCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ApproveContentCommand approves content that is pending review.
type ApproveContentCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Notes      string    `json:"notes,omitempty"`
}

// Type implements command.Message.
func (ApproveContentCommand) Type() string { return approveContentMessageType }

// Validate ensures target and reviewer are present.
func (m ApproveContentCommand) Validate() error {
	errs := targetErrors(approveContentMessageType, m.TargetType, m.TargetID)
	if m.ReviewerID == uuid.Nil {
		errs["reviewer_id"] = validation.NewError(approveContentMessageType+".reviewer_id_required", "reviewer_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApproveContentHandler approves content via the lifecycle service.
type ApproveContentHandler struct {
	inner *commands.Handler[ApproveContentCommand]
}

func NewApproveContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ApproveContentCommand]) *ApproveContentHandler {
	exec := func(ctx context.Context, msg ApproveContentCommand) error {
		_, err := service.Approve(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ReviewerID, msg.Notes)
		return err
	}

	handlerOpts := []commands.HandlerOption[ApproveContentCommand]{
		commands.WithLogger[ApproveContentCommand](logger),
		commands.WithOperation[ApproveContentCommand]("content.approve"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ApproveContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ApproveContentCommand].
func (h *ApproveContentHandler) Execute(ctx context.Context, msg ApproveContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RejectContentCommand rejects content that is pending review. Notes are
// mandatory so authors know what to fix.
type RejectContentCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Notes      string    `json:"notes"`
}

// Type implements command.Message.
func (RejectContentCommand) Type() string { return rejectContentMessageType }

// Validate ensures target, reviewer, and non-empty notes are present.
func (m RejectContentCommand) Validate() error {
	errs := targetErrors(rejectContentMessageType, m.TargetType, m.TargetID)
	if m.ReviewerID == uuid.Nil {
		errs["reviewer_id"] = validation.NewError(rejectContentMessageType+".reviewer_id_required", "reviewer_id is required")
	}
	if strings.TrimSpace(m.Notes) == "" {
		errs["notes"] = validation.NewError(rejectContentMessageType+".notes_required", "rejection notes are required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RejectContentHandler rejects content via the lifecycle service.
type RejectContentHandler struct {
	inner *commands.Handler[RejectContentCommand]
}

func NewRejectContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RejectContentCommand]) *RejectContentHandler {
	exec := func(ctx context.Context, msg RejectContentCommand) error {
		_, err := service.Reject(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ReviewerID, msg.Notes)
		return err
	}

	handlerOpts := []commands.HandlerOption[RejectContentCommand]{
		commands.WithLogger[RejectContentCommand](logger),
		commands.WithOperation[RejectContentCommand]("content.reject"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RejectContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RejectContentCommand].
func (h *RejectContentHandler) Execute(ctx context.Context, msg RejectContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
