package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(WithScheduledTask(&countingTask{name: "bad", schedule: "nope"}))
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestScheduler_Lifecycle(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(WithScheduledTask(&countingTask{name: "noop", schedule: "0 0 1 1 *"}))
	require.NoError(t, err)

	ctx := context.Background()
	check := SchedulerHealthcheck(s)

	require.ErrorIs(t, check(ctx), ErrNotStarted)
	require.ErrorIs(t, s.Stop(ctx), ErrNotStarted)

	require.NoError(t, s.Start(ctx))
	require.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)
	require.NoError(t, check(ctx))

	require.NoError(t, s.Stop(ctx))
	require.ErrorIs(t, check(ctx), ErrHealthcheckFailed)
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	ok := &countingTask{name: "ok", schedule: "0 0 1 1 *"}
	failing := &countingTask{name: "failing", schedule: "0 0 1 1 *", err: errors.New("boom")}

	s, err := NewScheduler(WithScheduledTask(ok), WithScheduledTask(failing))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.RunNow(ctx, "ok"))
	assert.EqualValues(t, 1, ok.runs.Load())

	require.EqualError(t, s.RunNow(ctx, "failing"), "boom")
	assert.EqualValues(t, 1, failing.runs.Load())

	require.ErrorIs(t, s.RunNow(ctx, "missing"), ErrUnknownTask)
}

func TestSchedulerHealthcheck_Nil(t *testing.T) {
	t.Parallel()

	err := SchedulerHealthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
	require.ErrorIs(t, err, ErrNotStarted)
}
