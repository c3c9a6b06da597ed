package async

import (
	"errors"
	"fmt"
)

var ErrDispatcherClosed = errors.New("async dispatcher closed")

// PanicError reports a handler panic that happened on a worker, where it
// cannot reach the code that posted the event.
type PanicError struct {
	// Type is the dispatch key name of the event
	Type string

	// Event is the posted event
	Event any

	// Value is the value passed to panic
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: handler for %s panicked: %v", e.Type, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
