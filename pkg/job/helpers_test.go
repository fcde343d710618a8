package job

import (
	"context"
	"sync/atomic"
)

type countingTask struct {
	name     string
	schedule string
	err      error
	runs     atomic.Int32
}

func (t *countingTask) Name() string     { return t.name }
func (t *countingTask) Schedule() string { return t.schedule }

func (t *countingTask) Handle(context.Context) error {
	t.runs.Add(1)
	return t.err
}
