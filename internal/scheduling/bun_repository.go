package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/storage"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunTaskStore persists tasks through bun. On Postgres the claim query
// locks candidate rows with SKIP LOCKED so concurrent executor replicas
// never pick up the same task; on SQLite the transaction's single writer
// gives the same exclusivity.
type BunTaskStore struct {
	db    *bun.DB
	now   func() time.Time
	genID func() uuid.UUID
}

// BunOption configures a BunTaskStore.
type BunOption func(*BunTaskStore)

// WithBunClock overrides the store clock, mainly for tests.
func WithBunClock(now func() time.Time) BunOption {
	return func(s *BunTaskStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBunIDGenerator overrides task ID generation.
func WithBunIDGenerator(gen func() uuid.UUID) BunOption {
	return func(s *BunTaskStore) {
		if gen != nil {
			s.genID = gen
		}
	}
}

func NewBunTaskStore(db *bun.DB, opts ...BunOption) *BunTaskStore {
	s := &BunTaskStore{
		db:    db,
		now:   time.Now,
		genID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BunTaskStore) Create(ctx context.Context, task *ScheduledTask) (*ScheduledTask, error) {
	if task == nil || task.TargetType == "" || task.TargetID == uuid.Nil {
		return nil, validationError(ErrTargetRequired, "task requires a target")
	}
	stored := task.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = s.genID()
	}
	if stored.Status == "" {
		stored.Status = TaskStatusPending
	}
	if stored.MaxAttempts <= 0 {
		stored.MaxAttempts = DefaultMaxAttempts
	}
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if _, err := storage.Exec(ctx, s.db).
		NewInsert().
		Model(stored).
		Exec(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *BunTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*ScheduledTask, error) {
	task := new(ScheduledTask)
	err := storage.Exec(ctx, s.db).
		NewSelect().
		Model(task).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError(ErrTaskNotFound, "task not found")
		}
		return nil, err
	}
	return task, nil
}

func (s *BunTaskStore) List(ctx context.Context, filter TaskFilter) ([]*ScheduledTask, error) {
	var tasks []*ScheduledTask
	q := storage.Exec(ctx, s.db).
		NewSelect().
		Model(&tasks).
		Order("scheduled_for ASC", "created_at ASC")

	if filter.TargetType != "" {
		q = q.Where("?TableAlias.target_type = ?", filter.TargetType)
	}
	if filter.TargetID != uuid.Nil {
		q = q.Where("?TableAlias.target_id = ?", filter.TargetID)
	}
	if filter.TaskType != "" {
		q = q.Where("?TableAlias.task_type = ?", filter.TaskType)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where("?TableAlias.status IN (?)", bun.In(statuses))
	}
	if filter.DueBefore != nil {
		q = q.Where("?TableAlias.scheduled_for <= ?", *filter.DueBefore)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *BunTaskStore) CancelPending(ctx context.Context, targetType string, targetID uuid.UUID, types ...TaskType) (int, error) {
	q := storage.Exec(ctx, s.db).
		NewUpdate().
		Model((*ScheduledTask)(nil)).
		Set("status = ?", TaskStatusCancelled).
		Set("updated_at = ?", s.now()).
		Where("target_type = ?", targetType).
		Where("target_id = ?", targetID).
		Where("status = ?", TaskStatusPending)
	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		q = q.Where("task_type IN (?)", bun.In(names))
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *BunTaskStore) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time) (*ScheduledTask, error) {
	res, err := storage.Exec(ctx, s.db).
		NewUpdate().
		Model((*ScheduledTask)(nil)).
		Set("scheduled_for = ?", runAt).
		Set("updated_at = ?", s.now()).
		Where("id = ?", id).
		Where("status = ?", TaskStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, conflictError(ErrTaskNotPending, "only pending tasks can be rescheduled")
	}
	return s.GetByID(ctx, id)
}

func (s *BunTaskStore) ClaimDue(ctx context.Context, until time.Time, limit int) ([]*ScheduledTask, error) {
	var claimed []*ScheduledTask
	err := s.InTransaction(ctx, func(ctx context.Context) error {
		idb := storage.Exec(ctx, s.db)

		var ids []uuid.UUID
		sel := idb.NewSelect().
			Model((*ScheduledTask)(nil)).
			Column("id").
			Where("status = ?", TaskStatusPending).
			Where("scheduled_for <= ?", until).
			Order("scheduled_for ASC", "created_at ASC")
		if limit > 0 {
			sel = sel.Limit(limit)
		}
		if s.db.Dialect().Name() == dialect.PG {
			sel = sel.For("UPDATE SKIP LOCKED")
		}
		if err := sel.Scan(ctx, &ids); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		now := s.now()
		if _, err := idb.NewUpdate().
			Model((*ScheduledTask)(nil)).
			Set("status = ?", TaskStatusProcessing).
			Set("attempts = attempts + 1").
			Set("last_attempt_at = ?", now).
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(ids)).
			Where("status = ?", TaskStatusPending).
			Exec(ctx); err != nil {
			return err
		}

		return idb.NewSelect().
			Model(&claimed).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Where("?TableAlias.status = ?", TaskStatusProcessing).
			Order("scheduled_for ASC", "created_at ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *BunTaskStore) Complete(ctx context.Context, id uuid.UUID) error {
	now := s.now()
	res, err := storage.Exec(ctx, s.db).
		NewUpdate().
		Model((*ScheduledTask)(nil)).
		Set("status = ?", TaskStatusCompleted).
		Set("completed_at = ?", now).
		Set("error_message = ''").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundError(ErrTaskNotFound, "task not found")
	}
	return nil
}

func (s *BunTaskStore) Fail(ctx context.Context, id uuid.UUID, cause error) (*ScheduledTask, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := storage.Exec(ctx, s.db).
		NewUpdate().
		Model((*ScheduledTask)(nil)).
		Set("status = CASE WHEN attempts >= max_attempts THEN ? ELSE ? END", TaskStatusFailed, TaskStatusPending).
		Set("error_message = ?", msg).
		Set("updated_at = ?", s.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, notFoundError(ErrTaskNotFound, "task not found")
	}
	return s.GetByID(ctx, id)
}

func (s *BunTaskStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return storage.RunInTx(ctx, s.db, fn)
}
