package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/KCuppens/bedrock-cms/internal/storage"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// BunPageResolver resolves pages with raw bun queries. Unlike the
// repository-backed resolver it joins any transaction carried on the context,
// which the scheduling service and the task executor rely on to keep content
// and task rows consistent.
type BunPageResolver struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunPageResolver constructs a transaction-aware page resolver.
func NewBunPageResolver(db *bun.DB) *BunPageResolver {
	return &BunPageResolver{db: db, now: time.Now}
}

// Load fetches the lifecycle state for a page.
func (r *BunPageResolver) Load(ctx context.Context, id uuid.UUID) (*interfaces.ContentState, error) {
	record := &Page{}
	err := storage.Exec(ctx, r.db).NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &interfaces.NotFoundError{Ref: interfaces.TargetRef{Type: TargetTypePage, ID: id}}
		}
		return nil, err
	}
	return record.LifecycleState(), nil
}

// Apply rewrites the lifecycle columns on the page row.
func (r *BunPageResolver) Apply(ctx context.Context, state *interfaces.ContentState, actor uuid.UUID) error {
	record := &Page{ID: state.Ref.ID}
	record.ApplyLifecycleState(state, actor, r.now())

	columns := lifecycleColumns
	if actor == uuid.Nil {
		columns = lifecycleColumnsWithoutActor()
	}

	res, err := storage.Exec(ctx, r.db).NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, interfaces.TargetRef{Type: TargetTypePage, ID: state.Ref.ID})
}

// BunPostResolver resolves posts with raw bun queries; see BunPageResolver.
type BunPostResolver struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunPostResolver constructs a transaction-aware post resolver.
func NewBunPostResolver(db *bun.DB) *BunPostResolver {
	return &BunPostResolver{db: db, now: time.Now}
}

// Load fetches the lifecycle state for a post.
func (r *BunPostResolver) Load(ctx context.Context, id uuid.UUID) (*interfaces.ContentState, error) {
	record := &Post{}
	err := storage.Exec(ctx, r.db).NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &interfaces.NotFoundError{Ref: interfaces.TargetRef{Type: TargetTypePost, ID: id}}
		}
		return nil, err
	}
	return record.LifecycleState(), nil
}

// Apply rewrites the lifecycle columns on the post row.
func (r *BunPostResolver) Apply(ctx context.Context, state *interfaces.ContentState, actor uuid.UUID) error {
	record := &Post{ID: state.Ref.ID}
	record.ApplyLifecycleState(state, actor, r.now())

	columns := lifecycleColumns
	if actor == uuid.Nil {
		columns = lifecycleColumnsWithoutActor()
	}

	res, err := storage.Exec(ctx, r.db).NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, interfaces.TargetRef{Type: TargetTypePost, ID: state.Ref.ID})
}

// BunRegistry wires transaction-aware page and post resolvers.
func BunRegistry(db *bun.DB) *Registry {
	registry := NewRegistry()
	_ = registry.Register(TargetTypePage, NewBunPageResolver(db))
	_ = registry.Register(TargetTypePost, NewBunPostResolver(db))
	return registry
}

func lifecycleColumnsWithoutActor() []string {
	out := make([]string, 0, len(lifecycleColumns))
	for _, column := range lifecycleColumns {
		if column == "updated_by" {
			continue
		}
		out = append(out, column)
	}
	return out
}

func requireRow(res sql.Result, ref interfaces.TargetRef) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &interfaces.NotFoundError{Ref: ref}
	}
	return nil
}
