package job

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
)

type taskRegistry struct {
	handlers map[string]scheduledHandler
	mu       sync.RWMutex
}

func newTaskRegistry(schedules []scheduleConfig) *taskRegistry {
	r := &taskRegistry{handlers: make(map[string]scheduledHandler, len(schedules))}
	for _, s := range schedules {
		r.handlers[s.name] = s.handler
	}
	return r
}

func (r *taskRegistry) get(name string) (scheduledHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}
	return s, nil
}
