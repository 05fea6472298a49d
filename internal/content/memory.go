package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository is an in-memory implementation for scaffolding and tests.
type MemoryPageRepository struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*Page
	slugIndex map[string]uuid.UUID
}

// NewMemoryPageRepository creates an empty in-memory page repository.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages:     make(map[uuid.UUID]*Page),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied page, normalizing its slug.
func (m *MemoryPageRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePage(record)
	if normalized, err := NormalizeSlug(copied.Slug); err == nil && normalized != "" {
		copied.Slug = normalized
	}
	m.pages[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePage(copied), nil
}

// GetByID retrieves a page by identifier.
func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(rec), nil
}

// GetBySlug retrieves a page by slug, returning NotFoundError when absent.
func (m *MemoryPageRepository) GetBySlug(_ context.Context, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return clonePage(m.pages[id]), nil
}

// List returns all pages.
func (m *MemoryPageRepository) List(_ context.Context) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Page, 0, len(m.pages))
	for _, rec := range m.pages {
		out = append(out, clonePage(rec))
	}
	return out, nil
}

// Update replaces the stored page.
func (m *MemoryPageRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pages[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: record.ID.String()}
	}
	delete(m.slugIndex, existing.Slug)

	copied := clonePage(record)
	m.pages[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePage(copied), nil
}

// MemoryPostRepository is an in-memory implementation for scaffolding and tests.
type MemoryPostRepository struct {
	mu        sync.RWMutex
	posts     map[uuid.UUID]*Post
	slugIndex map[string]uuid.UUID
}

// NewMemoryPostRepository creates an empty in-memory post repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts:     make(map[uuid.UUID]*Post),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied post, normalizing its slug.
func (m *MemoryPostRepository) Create(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	if normalized, err := NormalizeSlug(copied.Slug); err == nil && normalized != "" {
		copied.Slug = normalized
	}
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

// GetByID retrieves a post by identifier.
func (m *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

// GetBySlug retrieves a post by slug, returning NotFoundError when absent.
func (m *MemoryPostRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(m.posts[id]), nil
}

// List returns all posts.
func (m *MemoryPostRepository) List(_ context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.posts))
	for _, rec := range m.posts {
		out = append(out, clonePost(rec))
	}
	return out, nil
}

// Update replaces the stored post.
func (m *MemoryPostRepository) Update(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.posts[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: record.ID.String()}
	}
	delete(m.slugIndex, existing.Slug)

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.PublishAt = cloneTimePtr(src.PublishAt)
	copied.UnpublishAt = cloneTimePtr(src.UnpublishAt)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.PublishedBy = cloneUUIDPtr(src.PublishedBy)
	copied.ReviewedBy = cloneUUIDPtr(src.ReviewedBy)
	return &copied
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}
	copied := *src
	copied.PublishAt = cloneTimePtr(src.PublishAt)
	copied.UnpublishAt = cloneTimePtr(src.UnpublishAt)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.PublishedBy = cloneUUIDPtr(src.PublishedBy)
	copied.ReviewedBy = cloneUUIDPtr(src.ReviewedBy)
	return &copied
}
