package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// PageResolver adapts a PageRepository to the TargetResolver contract.
type PageResolver struct {
	repo PageRepository
	now  func() time.Time
}

// NewPageResolver constructs a resolver over the supplied repository.
func NewPageResolver(repo PageRepository) *PageResolver {
	return &PageResolver{repo: repo, now: time.Now}
}

// WithClock overrides the timestamp source, primarily for tests.
func (r *PageResolver) WithClock(clock func() time.Time) *PageResolver {
	if clock != nil {
		r.now = clock
	}
	return r
}

// Load fetches the lifecycle state for a page.
func (r *PageResolver) Load(ctx context.Context, id uuid.UUID) (*interfaces.ContentState, error) {
	record, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapResolverError(err, TargetTypePage, id)
	}
	return record.LifecycleState(), nil
}

// Apply persists lifecycle state back onto the page.
func (r *PageResolver) Apply(ctx context.Context, state *interfaces.ContentState, actor uuid.UUID) error {
	record, err := r.repo.GetByID(ctx, state.Ref.ID)
	if err != nil {
		return mapResolverError(err, TargetTypePage, state.Ref.ID)
	}
	record.ApplyLifecycleState(state, actor, r.now())
	_, err = r.repo.Update(ctx, record)
	return err
}

// PostResolver adapts a PostRepository to the TargetResolver contract.
type PostResolver struct {
	repo PostRepository
	now  func() time.Time
}

// NewPostResolver constructs a resolver over the supplied repository.
func NewPostResolver(repo PostRepository) *PostResolver {
	return &PostResolver{repo: repo, now: time.Now}
}

// WithClock overrides the timestamp source, primarily for tests.
func (r *PostResolver) WithClock(clock func() time.Time) *PostResolver {
	if clock != nil {
		r.now = clock
	}
	return r
}

// Load fetches the lifecycle state for a post.
func (r *PostResolver) Load(ctx context.Context, id uuid.UUID) (*interfaces.ContentState, error) {
	record, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapResolverError(err, TargetTypePost, id)
	}
	return record.LifecycleState(), nil
}

// Apply persists lifecycle state back onto the post.
func (r *PostResolver) Apply(ctx context.Context, state *interfaces.ContentState, actor uuid.UUID) error {
	record, err := r.repo.GetByID(ctx, state.Ref.ID)
	if err != nil {
		return mapResolverError(err, TargetTypePost, state.Ref.ID)
	}
	record.ApplyLifecycleState(state, actor, r.now())
	_, err = r.repo.Update(ctx, record)
	return err
}

// DefaultRegistry wires page and post resolvers under their type identifiers.
func DefaultRegistry(pages PageRepository, posts PostRepository) *Registry {
	registry := NewRegistry()
	_ = registry.Register(TargetTypePage, NewPageResolver(pages))
	_ = registry.Register(TargetTypePost, NewPostResolver(posts))
	return registry
}

func mapResolverError(err error, targetType string, id uuid.UUID) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return &interfaces.NotFoundError{Ref: interfaces.TargetRef{Type: targetType, ID: id}}
	}
	return err
}
