package reactive

import (
	"errors"
	"fmt"
)

var (
	// ErrDisposed is returned by operations on a disposed node.
	ErrDisposed = errors.New("reactive: disposed")

	// ErrCanceled is returned when a wait is abandoned through its context.
	ErrCanceled = errors.New("reactive: wait canceled")

	ErrIndexOutOfRange = errors.New("reactive: index out of range")
)

// PanicError carries a panic recovered from an expression function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: expression panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, i, n)
}
