package audit

import (
	"context"
	"maps"
	"sync"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// InMemoryRecorder accumulates audit entries in-memory for tests and scaffolding.
type InMemoryRecorder struct {
	mu      sync.Mutex
	entries []interfaces.AuditEntry
	err     error
}

// NewInMemoryRecorder constructs an empty recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Record stores the supplied entry.
func (r *InMemoryRecorder) Record(_ context.Context, entry interfaces.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	copied := entry
	if copied.Metadata != nil {
		copied.Metadata = maps.Clone(copied.Metadata)
	}
	r.entries = append(r.entries, copied)
	return nil
}

// List returns the entries recorded so far.
func (r *InMemoryRecorder) List(context.Context) ([]interfaces.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interfaces.AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// Entries returns a snapshot of recorded audit entries.
func (r *InMemoryRecorder) Entries() []interfaces.AuditEntry {
	entries, _ := r.List(context.Background())
	return entries
}

// Fail configures the recorder to return the supplied error on subsequent Record calls.
func (r *InMemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
