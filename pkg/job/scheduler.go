package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs scheduled tasks in-process with robfig/cron.
// Use it when there is no PostgreSQL for River, for example with the
// SQLite store. Run exactly one Scheduler per database.
type Scheduler struct {
	cron     *cron.Cron
	registry *taskRegistry
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	started bool
}

// NewScheduler validates every schedule and prepares the cron runner.
func NewScheduler(opts ...Option) (*Scheduler, error) {
	cfg := newConfig(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		registry: newTaskRegistry(cfg.schedules),
		logger:   cfg.logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	for _, sched := range cfg.schedules {
		schedule, err := ParseSchedule(sched.schedule)
		if err != nil {
			cancel()
			return nil, err
		}
		name, handler := sched.name, sched.handler
		s.cron.Schedule(schedule, cron.FuncJob(func() {
			_ = runTask(s.ctx, s.logger, name, handler)
		}))
	}

	return s, nil
}

// Start launches the cron loop. It does not block.
func (s *Scheduler) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.cron.Start()
	s.started = true
	s.logger.Info("job scheduler started", slog.Any("tasks", s.registry.names()))
	return nil
}

// Stop cancels running tasks and waits for them, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	s.started = false
	s.cancel()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("job scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes a registered task synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	handler, ok := s.registry.get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return runTask(ctx, s.logger, name, handler)
}

// SchedulerHealthcheck reports whether the scheduler is running.
func SchedulerHealthcheck(s *Scheduler) func(context.Context) error {
	return func(context.Context) error {
		if s == nil {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.started {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		return nil
	}
}
