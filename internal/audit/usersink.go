package audit

import (
	"context"
	"maps"

	"github.com/google/uuid"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

const activityChannel = "cms"

// ActivityForwarder wraps a Recorder and mirrors every entry onto a go-users
// activity sink so lifecycle events show up on user activity feeds. Forwarding
// is best effort: a sink failure never blocks the audit write.
type ActivityForwarder struct {
	inner Recorder
	sink  interfaces.ActivitySink
}

// NewActivityForwarder composes the recorder with an optional activity sink.
func NewActivityForwarder(inner Recorder, sink interfaces.ActivitySink) *ActivityForwarder {
	return &ActivityForwarder{inner: inner, sink: sink}
}

// Record persists the entry and forwards it to the activity sink.
func (f *ActivityForwarder) Record(ctx context.Context, entry interfaces.AuditEntry) error {
	if err := f.inner.Record(ctx, entry); err != nil {
		return err
	}
	if f.sink == nil {
		return nil
	}

	record := interfaces.ActivityRecord{
		Verb:       entry.Action,
		ObjectType: entry.Target.Type,
		ObjectID:   entry.Target.ID.String(),
		Channel:    activityChannel,
		OccurredAt: entry.OccurredAt,
	}
	if entry.Actor != nil && *entry.Actor != uuid.Nil {
		record.ActorID = *entry.Actor
	}
	if entry.Metadata != nil {
		record.Data = maps.Clone(entry.Metadata)
	}
	_ = f.sink.Log(ctx, record)
	return nil
}

// List exposes the wrapped recorder's read surface.
func (f *ActivityForwarder) List(ctx context.Context) ([]interfaces.AuditEntry, error) {
	return f.inner.List(ctx)
}
