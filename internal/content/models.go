package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// Target type identifiers registered with the resolver registry.
const (
	TargetTypePage = "page"
	TargetTypePost = "post"
)

// Page is a publishable CMS page. Hierarchy, blocks, and SEO metadata live in
// the surrounding application; this model carries only what the lifecycle
// engine owns plus enough identity to be useful on its own.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug        string     `bun:"slug,notnull" json:"slug"`
	Title       string     `bun:"title,notnull" json:"title"`
	Status      string     `bun:"status,notnull,default:'draft'" json:"status"`
	PublishAt   *time.Time `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	UnpublishAt *time.Time `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	PublishedBy *uuid.UUID `bun:"published_by,type:uuid" json:"published_by,omitempty"`
	ReviewedBy  *uuid.UUID `bun:"reviewed_by,type:uuid" json:"reviewed_by,omitempty"`
	ReviewNotes string     `bun:"review_notes" json:"review_notes,omitempty"`
	CreatedBy   uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Post is a publishable blog post.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug        string     `bun:"slug,notnull" json:"slug"`
	Title       string     `bun:"title,notnull" json:"title"`
	Excerpt     *string    `bun:"excerpt" json:"excerpt,omitempty"`
	Status      string     `bun:"status,notnull,default:'draft'" json:"status"`
	PublishAt   *time.Time `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	UnpublishAt *time.Time `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	PublishedBy *uuid.UUID `bun:"published_by,type:uuid" json:"published_by,omitempty"`
	ReviewedBy  *uuid.UUID `bun:"reviewed_by,type:uuid" json:"reviewed_by,omitempty"`
	ReviewNotes string     `bun:"review_notes" json:"review_notes,omitempty"`
	CreatedBy   uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Ref returns the polymorphic reference for a page.
func (p *Page) Ref() interfaces.TargetRef {
	return interfaces.TargetRef{Type: TargetTypePage, ID: p.ID}
}

// Ref returns the polymorphic reference for a post.
func (p *Post) Ref() interfaces.TargetRef {
	return interfaces.TargetRef{Type: TargetTypePost, ID: p.ID}
}

// LifecycleState projects the columns the lifecycle engine owns.
func (p *Page) LifecycleState() *interfaces.ContentState {
	return &interfaces.ContentState{
		Ref:         p.Ref(),
		Status:      p.Status,
		PublishAt:   cloneTimePtr(p.PublishAt),
		UnpublishAt: cloneTimePtr(p.UnpublishAt),
		PublishedAt: cloneTimePtr(p.PublishedAt),
		PublishedBy: cloneUUIDPtr(p.PublishedBy),
		ReviewedBy:  cloneUUIDPtr(p.ReviewedBy),
		ReviewNotes: p.ReviewNotes,
	}
}

// ApplyLifecycleState copies a lifecycle projection back onto the record.
func (p *Page) ApplyLifecycleState(state *interfaces.ContentState, actor uuid.UUID, now time.Time) {
	p.Status = string(domain.NormalizeStatus(state.Status))
	p.PublishAt = cloneTimePtr(state.PublishAt)
	p.UnpublishAt = cloneTimePtr(state.UnpublishAt)
	p.PublishedAt = cloneTimePtr(state.PublishedAt)
	p.PublishedBy = cloneUUIDPtr(state.PublishedBy)
	p.ReviewedBy = cloneUUIDPtr(state.ReviewedBy)
	p.ReviewNotes = state.ReviewNotes
	p.UpdatedAt = now
	if actor != uuid.Nil {
		p.UpdatedBy = actor
	}
}

// LifecycleState projects the columns the lifecycle engine owns.
func (p *Post) LifecycleState() *interfaces.ContentState {
	return &interfaces.ContentState{
		Ref:         p.Ref(),
		Status:      p.Status,
		PublishAt:   cloneTimePtr(p.PublishAt),
		UnpublishAt: cloneTimePtr(p.UnpublishAt),
		PublishedAt: cloneTimePtr(p.PublishedAt),
		PublishedBy: cloneUUIDPtr(p.PublishedBy),
		ReviewedBy:  cloneUUIDPtr(p.ReviewedBy),
		ReviewNotes: p.ReviewNotes,
	}
}

// ApplyLifecycleState copies a lifecycle projection back onto the record.
func (p *Post) ApplyLifecycleState(state *interfaces.ContentState, actor uuid.UUID, now time.Time) {
	p.Status = string(domain.NormalizeStatus(state.Status))
	p.PublishAt = cloneTimePtr(state.PublishAt)
	p.UnpublishAt = cloneTimePtr(state.UnpublishAt)
	p.PublishedAt = cloneTimePtr(state.PublishedAt)
	p.PublishedBy = cloneUUIDPtr(state.PublishedBy)
	p.ReviewedBy = cloneUUIDPtr(state.ReviewedBy)
	p.ReviewNotes = state.ReviewNotes
	p.UpdatedAt = now
	if actor != uuid.Nil {
		p.UpdatedBy = actor
	}
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneUUIDPtr(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
