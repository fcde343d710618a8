package job

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

type scheduledHandler func(context.Context) error

type scheduleConfig struct {
	handler  scheduledHandler
	name     string
	schedule string
}

type config struct {
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
}

func newConfig(opts ...Option) *config {
	c := &config{
		queues:     make(map[string]int),
		logger:     logger.NewNope(),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Manager or a Scheduler.
type Option func(*config)

// WithScheduledTask registers a periodic task. Schedule() must return a
// 5-field cron expression (min hour dom month dow).
//
//	job.WithScheduledTask(cart.NewSweeper(repo))
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue adds a named River queue. Ignored by Scheduler.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithMaxWorkers sets the worker count of the default River queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
