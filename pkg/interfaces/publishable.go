package interfaces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTargetNotFound reports missing content records when resolving a target reference.
	ErrTargetNotFound = errors.New("publishable: target not found")
	// ErrTargetTypeUnknown reports target types with no registered resolver.
	ErrTargetTypeUnknown = errors.New("publishable: target type not registered")
)

// TargetRef identifies one publishable content record independently of its
// concrete type. The type identifier is resolved through a resolver registry
// so the lifecycle engine stays decoupled from content models.
type TargetRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

func (r TargetRef) String() string {
	return r.Type + ":" + r.ID.String()
}

// IsZero reports whether the reference carries no usable identity.
func (r TargetRef) IsZero() bool {
	return r.Type == "" || r.ID == uuid.Nil
}

// ContentState is the lifecycle projection of a publishable record: the
// status and scheduling columns the engine owns, detached from whatever else
// the concrete model stores.
type ContentState struct {
	Ref         TargetRef
	Status      string
	PublishAt   *time.Time
	UnpublishAt *time.Time
	PublishedAt *time.Time
	PublishedBy *uuid.UUID
	ReviewedBy  *uuid.UUID
	ReviewNotes string
}

// ClearScheduling drops both scheduling timestamps.
func (s *ContentState) ClearScheduling() {
	s.PublishAt = nil
	s.UnpublishAt = nil
}

// TargetResolver loads and persists lifecycle state for one target type.
// Apply must honour a transaction already present on the context so the
// lifecycle engine can commit content and task mutations atomically.
type TargetResolver interface {
	// Load fetches the lifecycle state for the identified record.
	Load(ctx context.Context, id uuid.UUID) (*ContentState, error)
	// Apply persists the supplied state back onto the record, stamping the
	// actor as the last updater when present.
	Apply(ctx context.Context, state *ContentState, actor uuid.UUID) error
}

// NotFoundError decorates ErrTargetNotFound with the reference that missed.
type NotFoundError struct {
	Ref TargetRef
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("publishable: target %s not found", e.Ref)
}

func (e *NotFoundError) Unwrap() error {
	return ErrTargetNotFound
}
