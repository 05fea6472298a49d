package audit

import (
	"context"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// Recorder extends the consumed AuditSink contract with a read surface used
// by moderation dashboards and tests.
type Recorder interface {
	interfaces.AuditSink
	List(ctx context.Context) ([]interfaces.AuditEntry, error)
}
