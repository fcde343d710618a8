package health

import "errors"

// ErrCheckTimeout marks a probe that ran past the readiness timeout.
var ErrCheckTimeout = errors.New("health: check timeout")
