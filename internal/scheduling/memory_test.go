package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore() (*MemoryTaskStore, time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTaskStore(WithMemoryClock(func() time.Time { return now }))
	return store, now
}

func pendingTask(targetID uuid.UUID, due time.Time) *ScheduledTask {
	return &ScheduledTask{
		TargetType:   "page",
		TargetID:     targetID,
		TaskType:     TaskTypePublish,
		ScheduledFor: due,
	}
}

func TestClaimDueMarksProcessing(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("claimed %d tasks, want 1", len(claimed))
	}
	task := claimed[0]
	if task.ID != created.ID {
		t.Fatalf("claimed wrong task %s", task.ID)
	}
	if task.Status != TaskStatusProcessing {
		t.Fatalf("status = %s, want processing", task.Status)
	}
	if task.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", task.Attempts)
	}
	if task.LastAttemptAt == nil || !task.LastAttemptAt.Equal(now) {
		t.Fatalf("last_attempt_at = %v, want %v", task.LastAttemptAt, now)
	}

	again, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("second ClaimDue: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("claimed a processing task again")
	}
}

func TestClaimDueSkipsFutureTasks(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := store.ClaimDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatalf("claimed %d future tasks", len(claimed))
	}
}

func TestClaimDueRespectsLimit(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(-time.Minute))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	claimed, err := store.ClaimDue(ctx, now, 3)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("claimed %d tasks, want 3", len(claimed))
	}
}

func TestConcurrentClaimsAreExclusive(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	const total = 20
	for i := 0; i < total; i++ {
		if _, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(-time.Minute))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	const workers = 4
	var wg sync.WaitGroup
	results := make([][]*ScheduledTask, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			claimed, err := store.ClaimDue(ctx, now, total)
			if err != nil {
				t.Errorf("worker %d claim: %v", idx, err)
				return
			}
			results[idx] = claimed
		}(i)
	}
	wg.Wait()

	seen := make(map[uuid.UUID]int)
	claimedTotal := 0
	for _, claimed := range results {
		for _, task := range claimed {
			seen[task.ID]++
			claimedTotal++
		}
	}
	if claimedTotal != total {
		t.Fatalf("claimed %d tasks total, want %d", claimedTotal, total)
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("task %s claimed %d times", id, count)
		}
	}
}

func TestFailReturnsTaskToPendingUntilMaxAttempts(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cause := errors.New("target gone")
	for attempt := 1; attempt <= DefaultMaxAttempts; attempt++ {
		claimed, err := store.ClaimDue(ctx, now, 1)
		if err != nil {
			t.Fatalf("claim attempt %d: %v", attempt, err)
		}
		if len(claimed) != 1 {
			t.Fatalf("attempt %d claimed %d tasks", attempt, len(claimed))
		}
		if claimed[0].Attempts != attempt {
			t.Fatalf("attempt %d recorded attempts %d", attempt, claimed[0].Attempts)
		}

		failed, err := store.Fail(ctx, created.ID, cause)
		if err != nil {
			t.Fatalf("fail attempt %d: %v", attempt, err)
		}
		if attempt < DefaultMaxAttempts {
			if failed.Status != TaskStatusPending {
				t.Fatalf("attempt %d status = %s, want pending", attempt, failed.Status)
			}
		} else if failed.Status != TaskStatusFailed {
			t.Fatalf("final status = %s, want failed", failed.Status)
		}
		if failed.ErrorMessage != cause.Error() {
			t.Fatalf("error message = %q", failed.ErrorMessage)
		}
	}

	claimed, err := store.ClaimDue(ctx, now, 1)
	if err != nil {
		t.Fatalf("claim after terminal failure: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatal("claimed a terminally failed task")
	}
}

func TestCancelPendingFiltersByType(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()
	targetID := uuid.New()

	publish := pendingTask(targetID, now.Add(time.Hour))
	unpublish := pendingTask(targetID, now.Add(2*time.Hour))
	unpublish.TaskType = TaskTypeUnpublish

	if _, err := store.Create(ctx, publish); err != nil {
		t.Fatalf("create publish: %v", err)
	}
	created, err := store.Create(ctx, unpublish)
	if err != nil {
		t.Fatalf("create unpublish: %v", err)
	}

	count, err := store.CancelPending(ctx, "page", targetID, TaskTypeUnpublish)
	if err != nil {
		t.Fatalf("CancelPending: %v", err)
	}
	if count != 1 {
		t.Fatalf("cancelled %d tasks, want 1", count)
	}

	task, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get cancelled: %v", err)
	}
	if task.Status != TaskStatusCancelled {
		t.Fatalf("unpublish task status = %s", task.Status)
	}

	pending, err := store.List(ctx, TaskFilter{Statuses: []TaskStatus{TaskStatusPending}})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].TaskType != TaskTypePublish {
		t.Fatalf("expected the publish task to survive, got %d", len(pending))
	}
}

func TestRescheduleNonPendingTask(t *testing.T) {
	store, now := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, pendingTask(uuid.New(), now.Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.ClaimDue(ctx, now, 1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := store.Reschedule(ctx, created.ID, now.Add(time.Hour)); err == nil {
		t.Fatal("expected error rescheduling a processing task")
	}
}
