package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	"github.com/google/uuid"
)

func TestPageResolverRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pages := NewMemoryPageRepository()
	resolver := NewPageResolver(pages).WithClock(func() time.Time { return now })
	ctx := context.Background()

	page := &Page{
		ID:     uuid.New(),
		Slug:   "about-us",
		Title:  "About Us",
		Status: string(domain.StatusDraft),
	}
	if _, err := pages.Create(ctx, page); err != nil {
		t.Fatalf("create page: %v", err)
	}

	state, err := resolver.Load(ctx, page.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Status != string(domain.StatusDraft) {
		t.Fatalf("state status = %s", state.Status)
	}
	if state.Ref.Type != TargetTypePage || state.Ref.ID != page.ID {
		t.Fatalf("state ref = %+v", state.Ref)
	}

	actor := uuid.New()
	publishedAt := now.Add(-time.Minute)
	state.Status = string(domain.StatusPublished)
	state.PublishedAt = &publishedAt
	state.PublishedBy = &actor
	if err := resolver.Apply(ctx, state, actor); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	stored, err := pages.GetByID(ctx, page.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != string(domain.StatusPublished) {
		t.Fatalf("stored status = %s", stored.Status)
	}
	if stored.PublishedBy == nil || *stored.PublishedBy != actor {
		t.Fatalf("stored published_by = %v", stored.PublishedBy)
	}
	if stored.UpdatedBy != actor {
		t.Fatalf("stored updated_by = %s", stored.UpdatedBy)
	}
	if !stored.UpdatedAt.Equal(now) {
		t.Fatalf("stored updated_at = %v", stored.UpdatedAt)
	}
}

func TestPageResolverNotFound(t *testing.T) {
	resolver := NewPageResolver(NewMemoryPageRepository())

	_, err := resolver.Load(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if !errors.Is(err, interfaces.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	var notFound *interfaces.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *interfaces.NotFoundError, got %T", err)
	}
	if notFound.Ref.Type != TargetTypePage {
		t.Fatalf("not found ref type = %s", notFound.Ref.Type)
	}
}

func TestRegistryResolvesCaseInsensitively(t *testing.T) {
	registry := DefaultRegistry(NewMemoryPageRepository(), NewMemoryPostRepository())

	if _, err := registry.Resolve("Page"); err != nil {
		t.Fatalf("Resolve(Page): %v", err)
	}
	if _, err := registry.Resolve(" post "); err != nil {
		t.Fatalf("Resolve(post): %v", err)
	}

	_, err := registry.Resolve("widget")
	if err == nil {
		t.Fatal("expected unknown type error")
	}
	if !errors.Is(err, interfaces.ErrTargetTypeUnknown) {
		t.Fatalf("expected ErrTargetTypeUnknown, got %v", err)
	}

	types := registry.Types()
	if len(types) != 2 {
		t.Fatalf("registered types = %v", types)
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("", NewPageResolver(NewMemoryPageRepository())); err == nil {
		t.Fatal("expected error for empty type")
	}
	if err := registry.Register("page", nil); err == nil {
		t.Fatal("expected error for nil resolver")
	}
}
