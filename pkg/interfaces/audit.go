package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions emitted by the lifecycle engine and the task executor.
const (
	AuditActionSubmittedForReview = "submitted_for_review"
	AuditActionApproved           = "approved"
	AuditActionRejected           = "rejected"
	AuditActionPublish            = "publish"
	AuditActionUnpublish          = "unpublish"
	AuditActionSchedule           = "schedule"
	AuditActionUnschedule         = "unschedule"
	AuditActionTaskFailed         = "task_failed"
)

// AuditEntry captures one immutable record of a lifecycle transition or a
// terminal scheduled-task outcome.
type AuditEntry struct {
	Actor      *uuid.UUID
	Action     string
	Target     TargetRef
	OccurredAt time.Time
	Metadata   map[string]any
}

// AuditSink persists audit entries. Implementations are append-only; the
// engine never updates or deletes what it has written.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}
