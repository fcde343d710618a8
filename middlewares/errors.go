package middlewares

import (
	"errors"
	"fmt"
)

// ErrNilSessionManager is the panic value of CartSession without a manager.
var ErrNilSessionManager = errors.New("middlewares: session manager is required")

// PanicError is a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte // nil if stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts a PanicError from err.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
