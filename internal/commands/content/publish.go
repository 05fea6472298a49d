package contentcmd

import (
	"context"

	"github.com/KCuppens/bedrock-cms/internal/commands"
	"github.com/KCuppens/bedrock-cms/internal/lifecycle"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	publishContentMessageType   = "cms.content.publish"
	unpublishContentMessageType = "cms.content.unpublish"
)

// PublishContentCommand publishes content immediately, bypassing any
// scheduled window.
type PublishContentCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (PublishContentCommand) Type() string { return publishContentMessageType }

// Validate ensures the message carries a target before reaching handlers.
func (m PublishContentCommand) Validate() error {
	return validateTarget(publishContentMessageType, m.TargetType, m.TargetID)
}

// PublishContentHandler publishes content via the lifecycle service.
type PublishContentHandler struct {
	inner *commands.Handler[PublishContentCommand]
}

func NewPublishContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishContentCommand]) *PublishContentHandler {
	exec := func(ctx context.Context, msg PublishContentCommand) error {
		_, err := service.Publish(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishContentCommand]{
		commands.WithLogger[PublishContentCommand](logger),
		commands.WithOperation[PublishContentCommand]("content.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishContentCommand].
func (h *PublishContentHandler) Execute(ctx context.Context, msg PublishContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnpublishContentCommand takes published content back to draft.
type UnpublishContentCommand struct {
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (UnpublishContentCommand) Type() string { return unpublishContentMessageType }

// Validate ensures the message carries a target before reaching handlers.
func (m UnpublishContentCommand) Validate() error {
	return validateTarget(unpublishContentMessageType, m.TargetType, m.TargetID)
}

// UnpublishContentHandler unpublishes content via the lifecycle service.
type UnpublishContentHandler struct {
	inner *commands.Handler[UnpublishContentCommand]
}

func NewUnpublishContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishContentCommand]) *UnpublishContentHandler {
	exec := func(ctx context.Context, msg UnpublishContentCommand) error {
		_, err := service.Unpublish(ctx, targetRef(msg.TargetType, msg.TargetID), msg.ActorID)
		return err
	}

	handlerOpts := []commands.HandlerOption[UnpublishContentCommand]{
		commands.WithLogger[UnpublishContentCommand](logger),
		commands.WithOperation[UnpublishContentCommand]("content.unpublish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UnpublishContentCommand].
func (h *UnpublishContentHandler) Execute(ctx context.Context, msg UnpublishContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
