package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/domain"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type schedulingFixture struct {
	svc   Service
	store *MemoryTaskStore
	pages *content.MemoryPageRepository
	page  *content.Page
	now   time.Time
	actor uuid.UUID
}

func newSchedulingFixture(t *testing.T) *schedulingFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	pages := content.NewMemoryPageRepository()
	posts := content.NewMemoryPostRepository()
	registry := content.DefaultRegistry(pages, posts)
	store := NewMemoryTaskStore(WithMemoryClock(clock))

	page := &content.Page{
		ID:     uuid.New(),
		Slug:   "launch-announcement",
		Title:  "Launch Announcement",
		Status: string(domain.StatusDraft),
	}
	if _, err := pages.Create(context.Background(), page); err != nil {
		t.Fatalf("create page: %v", err)
	}

	svc := NewService(store, registry, WithClock(clock))
	return &schedulingFixture{
		svc:   svc,
		store: store,
		pages: pages,
		page:  page,
		now:   now,
		actor: uuid.New(),
	}
}

func (f *schedulingFixture) reloadPage(t *testing.T) *content.Page {
	t.Helper()
	page, err := f.pages.GetByID(context.Background(), f.page.ID)
	if err != nil {
		t.Fatalf("reload page: %v", err)
	}
	return page
}

func TestSchedulePublishCreatesTasksAndMarksScheduled(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()
	publishAt := f.now.Add(time.Hour)
	unpublishAt := f.now.Add(2 * time.Hour)

	result, err := f.svc.SchedulePublish(ctx, f.page.Ref(), publishAt, &unpublishAt, f.actor)
	if err != nil {
		t.Fatalf("SchedulePublish: %v", err)
	}
	if result.PublishTask == nil || result.UnpublishTask == nil {
		t.Fatalf("expected both tasks, got %+v", result)
	}
	if got := result.PublishTask.ScheduledFor; !got.Equal(publishAt) {
		t.Fatalf("publish task scheduled_for = %v, want %v", got, publishAt)
	}
	if result.PublishTask.Status != TaskStatusPending {
		t.Fatalf("publish task status = %s, want pending", result.PublishTask.Status)
	}
	if result.PublishTask.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("publish task max_attempts = %d, want %d", result.PublishTask.MaxAttempts, DefaultMaxAttempts)
	}
	if result.UnpublishTask.TaskType != TaskTypeUnpublish {
		t.Fatalf("unpublish task type = %s", result.UnpublishTask.TaskType)
	}

	page := f.reloadPage(t)
	if page.Status != string(domain.StatusScheduled) {
		t.Fatalf("page status = %s, want scheduled", page.Status)
	}
	if page.PublishAt == nil || !page.PublishAt.Equal(publishAt) {
		t.Fatalf("page publish_at = %v, want %v", page.PublishAt, publishAt)
	}
	if page.UnpublishAt == nil || !page.UnpublishAt.Equal(unpublishAt) {
		t.Fatalf("page unpublish_at = %v, want %v", page.UnpublishAt, unpublishAt)
	}
}

func TestSchedulePublishRejectsPastTime(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	_, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(-time.Minute), nil, f.actor)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	tasks, err := f.store.List(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
	if page := f.reloadPage(t); page.Status != string(domain.StatusDraft) {
		t.Fatalf("page status changed to %s", page.Status)
	}
}

func TestSchedulePublishRejectsInvertedWindow(t *testing.T) {
	f := newSchedulingFixture(t)
	publishAt := f.now.Add(2 * time.Hour)
	unpublishAt := f.now.Add(time.Hour)

	_, err := f.svc.SchedulePublish(context.Background(), f.page.Ref(), publishAt, &unpublishAt, f.actor)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestSchedulePublishReplacesExistingTasks(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	first, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), nil, f.actor)
	if err != nil {
		t.Fatalf("first SchedulePublish: %v", err)
	}
	second, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(3*time.Hour), nil, f.actor)
	if err != nil {
		t.Fatalf("second SchedulePublish: %v", err)
	}

	original, err := f.store.GetByID(ctx, first.PublishTask.ID)
	if err != nil {
		t.Fatalf("get first task: %v", err)
	}
	if original.Status != TaskStatusCancelled {
		t.Fatalf("first task status = %s, want cancelled", original.Status)
	}

	pending, err := f.store.List(ctx, TaskFilter{Statuses: []TaskStatus{TaskStatusPending}})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.PublishTask.ID {
		t.Fatalf("expected exactly the replacement task pending, got %d", len(pending))
	}
}

func TestScheduleUnpublishRequiresPublished(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	_, err := f.svc.ScheduleUnpublish(ctx, f.page.Ref(), f.now.Add(time.Hour), f.actor)
	if err == nil {
		t.Fatal("expected validation error for draft content")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	f.page.Status = string(domain.StatusPublished)
	if _, err := f.pages.Update(ctx, f.page); err != nil {
		t.Fatalf("update page: %v", err)
	}

	task, err := f.svc.ScheduleUnpublish(ctx, f.page.Ref(), f.now.Add(time.Hour), f.actor)
	if err != nil {
		t.Fatalf("ScheduleUnpublish: %v", err)
	}
	if task.TaskType != TaskTypeUnpublish || task.Status != TaskStatusPending {
		t.Fatalf("unexpected task %+v", task)
	}
	if page := f.reloadPage(t); page.UnpublishAt == nil {
		t.Fatal("page unpublish_at not set")
	}
}

func TestCancelSchedulingRevertsStatus(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()
	unpublishAt := f.now.Add(2 * time.Hour)

	if _, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), &unpublishAt, f.actor); err != nil {
		t.Fatalf("SchedulePublish: %v", err)
	}

	state, err := f.svc.CancelScheduling(ctx, f.page.Ref(), f.actor, false)
	if err != nil {
		t.Fatalf("CancelScheduling: %v", err)
	}
	if state.Status != string(domain.StatusDraft) {
		t.Fatalf("state status = %s, want draft", state.Status)
	}

	page := f.reloadPage(t)
	if page.Status != string(domain.StatusDraft) || page.PublishAt != nil || page.UnpublishAt != nil {
		t.Fatalf("page not reverted: %+v", page)
	}

	pending, err := f.store.List(ctx, TaskFilter{Statuses: []TaskStatus{TaskStatusPending}})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending tasks, got %d", len(pending))
	}
}

func TestCancelSchedulingSkipStatusRevert(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), nil, f.actor); err != nil {
		t.Fatalf("SchedulePublish: %v", err)
	}

	state, err := f.svc.CancelScheduling(ctx, f.page.Ref(), f.actor, true)
	if err != nil {
		t.Fatalf("CancelScheduling: %v", err)
	}
	if state.Status != string(domain.StatusScheduled) {
		t.Fatalf("status reverted despite skip flag: %s", state.Status)
	}
	if state.PublishAt != nil {
		t.Fatal("publish_at not cleared")
	}
}

func TestRescheduleTaskUpdatesContentTimestamp(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	result, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), nil, f.actor)
	if err != nil {
		t.Fatalf("SchedulePublish: %v", err)
	}

	newTime := f.now.Add(4 * time.Hour)
	task, err := f.svc.RescheduleTask(ctx, result.PublishTask.ID, newTime, f.actor)
	if err != nil {
		t.Fatalf("RescheduleTask: %v", err)
	}
	if !task.ScheduledFor.Equal(newTime) {
		t.Fatalf("task scheduled_for = %v, want %v", task.ScheduledFor, newTime)
	}
	if page := f.reloadPage(t); page.PublishAt == nil || !page.PublishAt.Equal(newTime) {
		t.Fatalf("page publish_at = %v, want %v", page.PublishAt, newTime)
	}
}

func TestRescheduleProcessingTaskConflicts(t *testing.T) {
	f := newSchedulingFixture(t)
	ctx := context.Background()

	result, err := f.svc.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), nil, f.actor)
	if err != nil {
		t.Fatalf("SchedulePublish: %v", err)
	}

	claimed, err := f.store.ClaimDue(ctx, f.now.Add(2*time.Hour), 10)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("claimed %d tasks, want 1", len(claimed))
	}

	_, err = f.svc.RescheduleTask(ctx, result.PublishTask.ID, f.now.Add(5*time.Hour), f.actor)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestRescheduleTaskRejectsPastTime(t *testing.T) {
	f := newSchedulingFixture(t)

	_, err := f.svc.RescheduleTask(context.Background(), uuid.New(), f.now.Add(-time.Minute), f.actor)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}
