package cms

import (
	"context"
	"strings"
	"time"

	"github.com/KCuppens/bedrock-cms/internal/audit"
	"github.com/KCuppens/bedrock-cms/internal/content"
	"github.com/KCuppens/bedrock-cms/internal/jobs"
	"github.com/KCuppens/bedrock-cms/internal/lifecycle"
	"github.com/KCuppens/bedrock-cms/internal/logging"
	"github.com/KCuppens/bedrock-cms/internal/logging/gologger"
	"github.com/KCuppens/bedrock-cms/internal/scheduling"
	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Module wires the content lifecycle engine: target registry, scheduling
// service, state machine, task executor, and audit trail. Hosts construct
// one Module per database and call the exposed services.
type Module struct {
	cfg      Config
	db       *bun.DB
	provider interfaces.LoggerProvider
	now      func() time.Time
	activity interfaces.ActivitySink

	pages    content.PageRepository
	posts    content.PostRepository
	registry *content.Registry
	auditor  audit.Recorder

	store     scheduling.TaskStore
	scheduler scheduling.Service
	engine    lifecycle.Service
	worker    *jobs.Worker
	runner    *jobs.Runner
}

// Option customises Module construction.
type Option func(*Module)

// WithDB binds the module to a bun database. Without it the module runs
// entirely in memory.
func WithDB(db *bun.DB) Option {
	return func(m *Module) {
		m.db = db
	}
}

// WithLoggerProvider overrides the logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithClock overrides the module clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Module) {
		if now != nil {
			m.now = now
		}
	}
}

// WithActivitySink forwards audit entries to a user activity feed in
// addition to the audit store.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(m *Module) {
		m.activity = sink
	}
}

// New builds a Module from configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil && cfg.Features.Logger {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	useBun := m.db != nil && strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) != "memory"
	if useBun {
		var (
			cacheService repocache.CacheService
			serializer   repocache.KeySerializer
		)
		if cfg.Cache.Enabled {
			cacheCfg := repocache.DefaultConfig()
			if cfg.Cache.DefaultTTL > 0 {
				cacheCfg.TTL = cfg.Cache.DefaultTTL
			}
			if service, err := repocache.NewCacheService(cacheCfg); err == nil {
				cacheService = service
				serializer = repocache.NewDefaultKeySerializer()
			}
		}

		m.pages = content.NewBunPageRepositoryWithCache(m.db, cacheService, serializer)
		m.posts = content.NewBunPostRepositoryWithCache(m.db, cacheService, serializer)
		m.registry = content.BunRegistry(m.db)
		m.store = scheduling.NewBunTaskStore(m.db, scheduling.WithBunClock(m.now))
		m.auditor = audit.NewBunRecorder(m.db)
	} else {
		m.pages = content.NewMemoryPageRepository()
		m.posts = content.NewMemoryPostRepository()
		m.registry = content.DefaultRegistry(m.pages, m.posts)
		m.store = scheduling.NewMemoryTaskStore(scheduling.WithMemoryClock(m.now))
		m.auditor = audit.NewInMemoryRecorder()
	}

	var sink interfaces.AuditSink
	if cfg.Features.Audit {
		if cfg.Features.Activity && m.activity != nil {
			m.auditor = audit.NewActivityForwarder(m.auditor, m.activity)
		}
		sink = m.auditor
	}

	m.scheduler = scheduling.NewService(m.store, m.registry,
		scheduling.WithLogger(logging.SchedulingLogger(m.provider)),
		scheduling.WithClock(m.now),
		scheduling.WithMaxAttempts(cfg.Scheduling.MaxAttempts),
	)

	lifecycleOpts := []lifecycle.Option{
		lifecycle.WithLogger(logging.LifecycleLogger(m.provider)),
		lifecycle.WithClock(m.now),
	}
	if sink != nil {
		lifecycleOpts = append(lifecycleOpts, lifecycle.WithAuditSink(sink))
	}
	m.engine = lifecycle.NewService(m.registry, m.scheduler, lifecycleOpts...)

	if cfg.Features.Scheduling {
		workerOpts := []jobs.WorkerOption{
			jobs.WithWorkerLogger(logging.JobsLogger(m.provider)),
			jobs.WithWorkerClock(m.now),
			jobs.WithBatchSize(cfg.Scheduling.BatchSize),
		}
		if sink != nil {
			workerOpts = append(workerOpts, jobs.WithWorkerAuditSink(sink))
		}
		m.worker = jobs.NewWorker(m.store, m.registry, workerOpts...)
		m.runner = jobs.NewRunner(m.worker,
			jobs.WithRunnerLogger(logging.JobsLogger(m.provider)),
			jobs.WithInterval(cfg.Scheduling.Interval),
		)
	}

	return m, nil
}

// Start begins periodic task execution when the scheduling feature and
// runner auto-start are enabled. It is a no-op otherwise.
func (m *Module) Start(ctx context.Context) error {
	if m.runner == nil || !m.cfg.Commands.AutoStartRunner {
		return nil
	}
	return m.runner.Start(ctx)
}

// Stop halts the task executor if it was started.
func (m *Module) Stop() {
	if m.runner != nil && m.cfg.Commands.AutoStartRunner {
		m.runner.Stop()
	}
}

// Lifecycle exposes the content state machine.
func (m *Module) Lifecycle() lifecycle.Service {
	return m.engine
}

// Scheduler exposes the scheduling service.
func (m *Module) Scheduler() scheduling.Service {
	return m.scheduler
}

// Worker exposes the task executor for hosts that drive it themselves.
func (m *Module) Worker() *jobs.Worker {
	return m.worker
}

// Runner exposes the periodic executor wrapper.
func (m *Module) Runner() *jobs.Runner {
	return m.runner
}

// Audit exposes the audit trail reader.
func (m *Module) Audit() audit.Recorder {
	return m.auditor
}

// Registry exposes the publishable target registry so hosts can register
// additional content types.
func (m *Module) Registry() *content.Registry {
	return m.registry
}

// Pages exposes the page repository.
func (m *Module) Pages() content.PageRepository {
	return m.pages
}

// Posts exposes the post repository.
func (m *Module) Posts() content.PostRepository {
	return m.posts
}
