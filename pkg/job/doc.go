// Package job runs the service's periodic maintenance tasks.
//
// A task is any value with three methods:
//
//	Name() string                 // unique task name, e.g. "cart_sweep"
//	Schedule() string             // 5-field cron: min hour dom month dow
//	Handle(context.Context) error // one run
//
// cart.Sweeper is the main one. Tasks are registered with
// [WithScheduledTask] and run by one of two runners that share the same
// options.
//
// # River Manager
//
// [Manager] uses github.com/riverqueue/river on PostgreSQL through the
// riverpgxv5 driver. Periodic jobs are inserted by the elected leader and
// worked by any replica, so scaling out never runs a sweep twice. Apply
// River's schema first with [Migrate]:
//
//	if err := job.Migrate(ctx, pool); err != nil {
//	    return err
//	}
//
//	m, err := job.NewManager(pool,
//	    job.WithScheduledTask(cart.NewSweeper(repo)),
//	    job.WithMaxWorkers(2),
//	    job.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := m.Start(ctx); err != nil {
//	    return err
//	}
//	defer m.Stop(context.Background())
//
// A failing run is retried by River with backoff. [WithQueue] adds named
// queues when maintenance work should not share workers.
//
// # Enqueueing a Run
//
// [Manager.Enqueue] inserts a one-off run of a registered task, for
// example from the "cartkeep sweep --async" command:
//
//	err := m.Enqueue(ctx, "cart_sweep",
//	    job.UniqueFor(time.Minute, "cli"),
//	    job.MaxAttempts(3),
//	)
//
// [UniqueFor] drops duplicates inserted within the window under the same
// key. [ScheduledIn] and [ScheduledAt] delay the run and [InQueue] routes
// it. Unknown task names fail with [ErrUnknownTask].
//
// # Cron Scheduler
//
// [Scheduler] runs the same tasks in-process with
// github.com/robfig/cron/v3 for single-node deployments on SQLite.
// Overlapping runs of one task are skipped:
//
//	s, err := job.NewScheduler(
//	    job.WithScheduledTask(cart.NewSweeper(repo, cart.WithSchedule("*/15 * * * *"))),
//	    job.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	_ = s.Start(ctx)
//	defer s.Stop(context.Background())
//
//	_ = s.RunNow(ctx, "cart_sweep")
//
// Schedules are validated up front by [ParseSchedule]; a bad expression
// fails construction with [ErrInvalidSchedule].
//
// # Health
//
// [Healthcheck] and [SchedulerHealthcheck] return readiness probes for
// pkg/health. They fail with [ErrHealthcheckFailed] until the runner has
// started.
package job
