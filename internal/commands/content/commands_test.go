package contentcmd

import (
	"context"
	"testing"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/audit"
	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/domain"
	"github.com/KCuppens/bedrock-cms/internal/identity"
	"github.com/KCuppens/bedrock-cms/internal/lifecycle"
	"github.com/KCuppens/bedrock-cms/internal/scheduling"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type commandFixture struct {
	engine    lifecycle.Service
	scheduler scheduling.Service
	pages     *content.MemoryPageRepository
	page      *content.Page
	now       time.Time
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	pages := content.NewMemoryPageRepository()
	posts := content.NewMemoryPostRepository()
	registry := content.DefaultRegistry(pages, posts)
	store := scheduling.NewMemoryTaskStore(scheduling.WithMemoryClock(clock))
	scheduler := scheduling.NewService(store, registry, scheduling.WithClock(clock))
	engine := lifecycle.NewService(registry, scheduler,
		lifecycle.WithClock(clock),
		lifecycle.WithAuditSink(audit.NewInMemoryRecorder()),
	)

	page := &content.Page{
		ID:     identity.PageUUID("press-release"),
		Slug:   "press-release",
		Title:  "Press Release",
		Status: string(domain.StatusDraft),
	}
	if _, err := pages.Create(context.Background(), page); err != nil {
		t.Fatalf("create page: %v", err)
	}

	return &commandFixture{
		engine:    engine,
		scheduler: scheduler,
		pages:     pages,
		page:      page,
		now:       now,
	}
}

func (f *commandFixture) pageStatus(t *testing.T) string {
	t.Helper()
	page, err := f.pages.GetByID(context.Background(), f.page.ID)
	if err != nil {
		t.Fatalf("reload page: %v", err)
	}
	return page.Status
}

func TestSubmitForReviewCommandValidation(t *testing.T) {
	msg := SubmitForReviewCommand{}
	if err := msg.Validate(); err == nil {
		t.Fatal("expected validation error for empty message")
	}

	msg = SubmitForReviewCommand{TargetType: "page", TargetID: uuid.New()}
	if err := msg.Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
}

func TestSubmitForReviewHandlerExecutes(t *testing.T) {
	f := newCommandFixture(t)
	handler := NewSubmitForReviewHandler(f.engine, nil)

	err := handler.Execute(context.Background(), SubmitForReviewCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
		ActorID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := f.pageStatus(t); got != string(domain.StatusPendingReview) {
		t.Fatalf("page status = %s, want pending_review", got)
	}
}

func TestSubmitForReviewHandlerRejectsInvalidMessage(t *testing.T) {
	f := newCommandFixture(t)
	handler := NewSubmitForReviewHandler(f.engine, nil)

	err := handler.Execute(context.Background(), SubmitForReviewCommand{})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestApproveRejectCommandValidation(t *testing.T) {
	approve := ApproveContentCommand{TargetType: "page", TargetID: uuid.New()}
	if err := approve.Validate(); err == nil {
		t.Fatal("approve without reviewer should fail")
	}
	approve.ReviewerID = uuid.New()
	if err := approve.Validate(); err != nil {
		t.Fatalf("valid approve rejected: %v", err)
	}

	reject := RejectContentCommand{TargetType: "page", TargetID: uuid.New(), ReviewerID: uuid.New()}
	if err := reject.Validate(); err == nil {
		t.Fatal("reject without notes should fail")
	}
	reject.Notes = "   "
	if err := reject.Validate(); err == nil {
		t.Fatal("blank notes should fail")
	}
	reject.Notes = "needs sources"
	if err := reject.Validate(); err != nil {
		t.Fatalf("valid reject rejected: %v", err)
	}
}

func TestModerationHandlersRunFullFlow(t *testing.T) {
	f := newCommandFixture(t)
	ctx := context.Background()
	reviewer := uuid.New()

	if err := NewSubmitForReviewHandler(f.engine, nil).Execute(ctx, SubmitForReviewCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := NewApproveContentHandler(f.engine, nil).Execute(ctx, ApproveContentCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
		ReviewerID: reviewer,
		Notes:      "ship it",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := NewPublishContentHandler(f.engine, nil).Execute(ctx, PublishContentCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
		ActorID:    reviewer,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := f.pageStatus(t); got != string(domain.StatusPublished) {
		t.Fatalf("page status = %s, want published", got)
	}

	if err := NewUnpublishContentHandler(f.engine, nil).Execute(ctx, UnpublishContentCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
	}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if got := f.pageStatus(t); got != string(domain.StatusDraft) {
		t.Fatalf("page status = %s, want draft", got)
	}
}

func TestScheduleCommandValidation(t *testing.T) {
	msg := ScheduleContentCommand{TargetType: "page", TargetID: uuid.New()}
	if err := msg.Validate(); err == nil {
		t.Fatal("schedule without publish_at should fail")
	}
	msg.PublishAt = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	if err := msg.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestScheduleAndUnscheduleHandlers(t *testing.T) {
	f := newCommandFixture(t)
	ctx := context.Background()

	if err := NewScheduleContentHandler(f.engine, nil).Execute(ctx, ScheduleContentCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
		PublishAt:  f.now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := f.pageStatus(t); got != string(domain.StatusScheduled) {
		t.Fatalf("page status = %s, want scheduled", got)
	}

	if err := NewUnscheduleContentHandler(f.engine, nil).Execute(ctx, UnscheduleContentCommand{
		TargetType: content.TargetTypePage,
		TargetID:   f.page.ID,
	}); err != nil {
		t.Fatalf("unschedule: %v", err)
	}
	if got := f.pageStatus(t); got != string(domain.StatusDraft) {
		t.Fatalf("page status = %s, want draft", got)
	}
}

func TestRescheduleTaskHandler(t *testing.T) {
	f := newCommandFixture(t)
	ctx := context.Background()

	result, err := f.scheduler.SchedulePublish(ctx, f.page.Ref(), f.now.Add(time.Hour), nil, uuid.New())
	if err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	msg := RescheduleTaskCommand{}
	if err := msg.Validate(); err == nil {
		t.Fatal("empty reschedule message should fail validation")
	}

	if err := NewRescheduleTaskHandler(f.scheduler, nil).Execute(ctx, RescheduleTaskCommand{
		TaskID: result.PublishTask.ID,
		RunAt:  f.now.Add(3 * time.Hour),
	}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	task, err := f.scheduler.Store().GetByID(ctx, result.PublishTask.ID)
	if err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if !task.ScheduledFor.Equal(f.now.Add(3 * time.Hour)) {
		t.Fatalf("scheduled_for = %v", task.ScheduledFor)
	}
}
