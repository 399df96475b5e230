// Package stagestate holds the transient, per-frame execution state of every
// stage in a schedule: status, outstanding job count, collected job errors
// and timing.
//
// # Concurrency Model
//
// Entries are indexed by declaration order and allocated once per schedule.
// Job goroutines only touch their own stage's entry through RecordError and
// JobDone; status transitions are driven by the frame coordinator. Each
// entry carries its own mutex, so stages never contend with each other.
package stagestate

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a stage within one frame.
type Status int32

const (
	Pending Status = iota
	Running
	Completed
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is expected this frame.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed || s == Skipped
}

type entry struct {
	status    atomic.Int32
	remaining atomic.Int64

	mu         sync.Mutex
	errs       []error
	dispatched time.Time
	finished   time.Time
}

// Store is the state of all stages for the frame currently running.
type Store struct {
	entries []entry
}

// New allocates state for n stages, all Pending.
func New(n int) *Store {
	return &Store{entries: make([]entry, n)}
}

// Len returns the number of stages tracked.
func (s *Store) Len() int { return len(s.entries) }

// Reset returns every stage to Pending and forgets errors and timings.
func (s *Store) Reset() {
	for i := range s.entries {
		e := &s.entries[i]
		e.status.Store(int32(Pending))
		e.remaining.Store(0)
		e.mu.Lock()
		e.errs = nil
		e.dispatched = time.Time{}
		e.finished = time.Time{}
		e.mu.Unlock()
	}
}

// Dispatch marks stage i Running with jobs outstanding jobs.
func (s *Store) Dispatch(i, jobs int, at time.Time) {
	e := &s.entries[i]
	e.mu.Lock()
	e.dispatched = at
	e.mu.Unlock()
	e.remaining.Store(int64(jobs))
	e.status.Store(int32(Running))
}

// RecordError attaches a job failure to stage i.
func (s *Store) RecordError(i int, err error) {
	if err == nil {
		return
	}
	e := &s.entries[i]
	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
}

// JobDone counts one finished job of stage i and reports whether it was the
// last outstanding one.
func (s *Store) JobDone(i int) bool {
	return s.entries[i].remaining.Add(-1) == 0
}

// Finish moves stage i to Completed, or Failed when any job error was
// recorded, and returns the new status.
func (s *Store) Finish(i int, at time.Time) Status {
	e := &s.entries[i]
	e.mu.Lock()
	e.finished = at
	failed := len(e.errs) > 0
	e.mu.Unlock()

	st := Completed
	if failed {
		st = Failed
	}
	e.status.Store(int32(st))
	return st
}

// Skip marks stage i Skipped. Skipped stages are never dispatched.
func (s *Store) Skip(i int) {
	s.entries[i].status.Store(int32(Skipped))
}

// Status returns the current status of stage i.
func (s *Store) Status(i int) Status {
	return Status(s.entries[i].status.Load())
}

// Err returns the joined job errors of stage i, or nil.
func (s *Store) Err(i int) error {
	e := &s.entries[i]
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.Join(e.errs...)
	}
}

// Duration returns the time from dispatch to completion of stage i, or zero
// if the stage did not finish.
func (s *Store) Duration(i int) time.Duration {
	e := &s.entries[i]
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dispatched.IsZero() || e.finished.IsZero() {
		return 0
	}
	return e.finished.Sub(e.dispatched)
}
