package grid

import "errors"

var (
	// ErrInvalidOptions indicates options that cannot describe a grid.
	ErrInvalidOptions = errors.New("grid: invalid options")

	// ErrClosed indicates use of an engine after Close.
	ErrClosed = errors.New("grid: engine closed")

	// ErrNoHandler indicates New was called without a handler.
	ErrNoHandler = errors.New("grid: nil handler")
)

// BackendError wraps a failure reported by a backend.
type BackendError struct {
	Op      string
	Frame   int
	Wrapped error
}

func (e *BackendError) Error() string {
	return "grid: backend " + e.Op + ": " + e.Wrapped.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Wrapped
}
