package content

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func newPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

func newPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// lifecycleColumns are the columns rewritten when lifecycle state changes.
var lifecycleColumns = []string{
	"status",
	"publish_at",
	"unpublish_at",
	"published_at",
	"published_by",
	"reviewed_by",
	"review_notes",
	"updated_by",
	"updated_at",
}

// BunPageRepository persists pages through bun with optional read caching.
type BunPageRepository struct {
	repo repository.Repository[*Page]
}

// NewBunPageRepository constructs a PageRepository backed by bun.
func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository with optional caching.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	return &BunPageRepository{
		repo: wrapWithCache(newPageRepository(db), cacheService, keySerializer),
	}
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	if normalized, err := NormalizeSlug(record.Slug); err == nil && normalized != "" {
		record.Slug = normalized
	}
	return r.repo.Create(ctx, record)
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return result, nil
}

func (r *BunPageRepository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return records[0], nil
}

func (r *BunPageRepository) List(ctx context.Context) ([]*Page, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	columns := append([]string{"slug", "title"}, lifecycleColumns...)
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(columns...),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", record.ID.String())
	}
	return updated, nil
}

// BunPostRepository persists posts through bun with optional read caching.
type BunPostRepository struct {
	repo repository.Repository[*Post]
}

// NewBunPostRepository constructs a PostRepository backed by bun.
func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

// NewBunPostRepositoryWithCache constructs a PostRepository with optional caching.
func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	return &BunPostRepository{
		repo: wrapWithCache(newPostRepository(db), cacheService, keySerializer),
	}
}

func (r *BunPostRepository) Create(ctx context.Context, record *Post) (*Post, error) {
	if normalized, err := NormalizeSlug(record.Slug); err == nil && normalized != "" {
		record.Slug = normalized
	}
	return r.repo.Create(ctx, record)
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "post", id.String())
	}
	return result, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return records[0], nil
}

func (r *BunPostRepository) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunPostRepository) Update(ctx context.Context, record *Post) (*Post, error) {
	columns := append([]string{"slug", "title", "excerpt"}, lifecycleColumns...)
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(columns...),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", record.ID.String())
	}
	return updated, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
