package audit

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/KCuppens/bedrock-cms/internal/storage"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// BunRecorder persists audit entries through bun. Inserts join any
// transaction already carried on the context, so entries written during a
// lifecycle transition commit or roll back together with it.
type BunRecorder struct {
	db  *bun.DB
	id  func() uuid.UUID
	now func() time.Time
}

// NewBunRecorder constructs a recorder bound to the supplied database.
func NewBunRecorder(db *bun.DB) *BunRecorder {
	return &BunRecorder{
		db:  db,
		id:  uuid.New,
		now: time.Now,
	}
}

// Record inserts one immutable entry.
func (r *BunRecorder) Record(ctx context.Context, entry interfaces.AuditEntry) error {
	row := &Entry{
		ID:         r.id(),
		ActorID:    entry.Actor,
		Action:     entry.Action,
		TargetType: entry.Target.Type,
		TargetID:   entry.Target.ID,
		OccurredAt: entry.OccurredAt,
		Metadata:   entry.Metadata,
		CreatedAt:  r.now(),
	}
	if row.OccurredAt.IsZero() {
		row.OccurredAt = row.CreatedAt
	}
	_, err := storage.Exec(ctx, r.db).NewInsert().Model(row).Exec(ctx)
	return err
}

// List returns all stored entries ordered by occurrence.
func (r *BunRecorder) List(ctx context.Context) ([]interfaces.AuditEntry, error) {
	var rows []*Entry
	if err := storage.Exec(ctx, r.db).NewSelect().
		Model(&rows).
		Order("occurred_at ASC", "created_at ASC").
		Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]interfaces.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := interfaces.AuditEntry{
			Actor:      row.ActorID,
			Action:     row.Action,
			Target:     interfaces.TargetRef{Type: row.TargetType, ID: row.TargetID},
			OccurredAt: row.OccurredAt,
		}
		if row.Metadata != nil {
			entry.Metadata = maps.Clone(row.Metadata)
		}
		out = append(out, entry)
	}
	return out, nil
}
