package content

import (
	"context"

	"github.com/google/uuid"
)

// PageRepository abstracts storage operations for pages.
type PageRepository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
}

// PostRepository abstracts storage operations for blog posts.
type PostRepository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
}
