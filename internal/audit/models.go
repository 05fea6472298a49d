package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is the persisted form of an audit record. Rows are append-only: the
// engine inserts them and never issues updates or deletes.
type Entry struct {
	bun.BaseModel `bun:"table:audit_entries,alias:ae"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	ActorID    *uuid.UUID     `bun:"actor_id,type:uuid" json:"actor_id,omitempty"`
	Action     string         `bun:"action,notnull" json:"action"`
	TargetType string         `bun:"target_type,notnull" json:"target_type"`
	TargetID   uuid.UUID      `bun:"target_id,notnull,type:uuid" json:"target_id"`
	OccurredAt time.Time      `bun:"occurred_at,notnull" json:"occurred_at"`
	Metadata   map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
