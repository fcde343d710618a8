package job

import "errors"

// Job errors.
var (
	ErrUnknownTask       = errors.New("job: unknown task")
	ErrAlreadyStarted    = errors.New("job: already started")
	ErrNotStarted        = errors.New("job: not started")
	ErrPoolRequired      = errors.New("job: pool is required")
	ErrInvalidSchedule   = errors.New("job: invalid cron schedule")
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
	ErrMigrateFailed     = errors.New("job: river migration failed")
)
