package session

import "errors"

// Session errors.
var (
	// ErrPersistenceSkipped is returned by Save when the payload fails
	// IsCartDataValid and nothing was written.
	ErrPersistenceSkipped = errors.New("session: persistence skipped")

	// ErrSaveFailed wraps store failures during Save.
	ErrSaveFailed = errors.New("session: save failed")

	// ErrDestroyFailed wraps store failures during Destroy.
	ErrDestroyFailed = errors.New("session: destroy failed")

	// ErrInvalidValue is returned when a payload field cannot be encoded
	// or decoded.
	ErrInvalidValue = errors.New("session: invalid value")
)
