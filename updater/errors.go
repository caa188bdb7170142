package updater

import (
	"errors"
	"fmt"
)

// ErrTaskPanicked is wrapped by the error recorded for a task whose Update
// panicked.
var ErrTaskPanicked = errors.New("task panicked")

// StepError records a task dropped from the queue because its Update failed.
type StepError struct {
	Task string
	Tick uint64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("task %q failed on tick %d: %v", e.Task, e.Tick, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepErrors flattens the error returned by Queue.Tick into its step errors.
func StepErrors(err error) []*StepError {
	if err == nil {
		return nil
	}

	var out []*StepError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, StepErrors(e)...)
		}
		return out
	}

	var se *StepError
	if errors.As(err, &se) {
		out = append(out, se)
	}
	return out
}
