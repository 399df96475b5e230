package frame

import (
	"errors"
	"fmt"
)

// ErrFrameInFlight is returned when RunFrame is called on a Schedule that is
// already running a frame.
var ErrFrameInFlight = errors.New("a frame is already in flight for this schedule")

// JobError attaches a job failure to the stage and job position it came from.
type JobError struct {
	Stage string
	Job   int
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("stage %q job %d: %v", e.Stage, e.Job, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// PanicError is the failure recorded for a job that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}
