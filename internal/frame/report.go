package frame

import (
	"errors"
	"fmt"
	"time"
)

// Report is the outcome of one frame.
type Report struct {
	// Frame is the 1-based sequence number of the frame on its Schedule.
	Frame uint64
	// Success is true when no stage failed or was skipped.
	Success bool
	// Failed lists failed stages in declaration order.
	Failed []string
	// Skipped lists stages not run because a predecessor failed.
	Skipped []string
	// Durations holds, per dispatched stage, the time from dispatch until
	// its last job finished.
	Durations map[string]time.Duration
	// Errors holds the job errors of each failed stage.
	Errors map[string]error
	// DispatchOrder lists stages in the order they were released.
	DispatchOrder []string
	// Elapsed is the wall time of the whole frame.
	Elapsed time.Duration
}

// Err summarises the failed stages as a single error, or nil on success.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, name := range r.Failed {
		errs = append(errs, fmt.Errorf("stage %q: %w", name, r.Errors[name]))
	}
	return fmt.Errorf("frame %d: %d stage(s) failed: %w", r.Frame, len(r.Failed), errors.Join(errs...))
}
