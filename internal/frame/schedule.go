package frame

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/plan"
	"github.com/specialistvlad/tickgrid/internal/scheduler"
	"github.com/specialistvlad/tickgrid/internal/stage"
	"github.com/specialistvlad/tickgrid/internal/stagestate"
	"github.com/specialistvlad/tickgrid/internal/workerpool"
)

// Submitter is the part of a worker pool a frame needs.
type Submitter interface {
	Submit(t workerpool.Task) error
}

// Schedule is an immutable execution plan plus the transient state needed to
// run it, one frame at a time.
type Schedule struct {
	plan   *plan.Plan
	policy FailurePolicy

	tracker *scheduler.Tracker
	state   *stagestate.Store

	inFlight atomic.Bool
	frames   atomic.Uint64
}

// completion signals that the last job of a stage finished.
type completion struct {
	stage int
	at    time.Time
}

// NewSchedule validates decls and builds the plan shared by every frame.
func NewSchedule(ctx context.Context, decls []stage.Declaration, opts ...Option) (*Schedule, error) {
	p, err := plan.Build(ctx, decls)
	if err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	s := &Schedule{
		plan:    p,
		tracker: scheduler.New(p),
		state:   stagestate.New(p.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}
	ctxlog.FromContext(ctx).Debug("Schedule built.",
		"stages", p.Len(),
		"policy", s.policy.String(),
		"order", p.TopologicalOrder(),
	)
	return s, nil
}

// Plan returns the schedule's dependency graph.
func (s *Schedule) Plan() *plan.Plan { return s.plan }

// Policy returns the failure policy in effect.
func (s *Schedule) Policy() FailurePolicy { return s.policy }

// Frames returns the number of frames started so far.
func (s *Schedule) Frames() uint64 { return s.frames.Load() }

// RunFrame executes every stage once on pool and blocks until all of them
// are terminal. ctx is handed to jobs; the coordinator itself does not abort
// a frame once started. Job failures are reported, not returned: the error
// result is reserved for misuse such as overlapping frames.
func (s *Schedule) RunFrame(ctx context.Context, pool Submitter) (*Report, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrFrameInFlight
	}
	defer s.inFlight.Store(false)

	frameNo := s.frames.Add(1)
	ctx, logger := ctxlog.With(ctx, "frame", frameNo)
	logger.Debug("Frame started.")

	s.tracker.Reset()
	s.state.Reset()

	n := s.plan.Len()
	// Every stage signals at most once, so the buffer never fills.
	done := make(chan completion, n)
	order := make([]string, 0, n)
	start := time.Now()

	ready := s.tracker.Ready()
	for {
		for len(ready) > 0 {
			i := ready[0]
			ready = ready[1:]

			if s.shouldSkip(i) {
				s.state.Skip(i)
				logger.Warn("Skipping stage due to upstream failure.", "stage", s.plan.Name(i))
				next, err := s.tracker.Complete(i)
				if err != nil {
					return nil, fmt.Errorf("frame %d: %w", frameNo, err)
				}
				ready = mergeReady(ready, next)
				continue
			}

			order = append(order, s.plan.Name(i))
			if s.dispatch(ctx, pool, i, done) {
				continue
			}

			// No jobs: the stage is complete the moment it is released.
			next, err := s.finish(ctx, completion{stage: i, at: time.Now()})
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", frameNo, err)
			}
			ready = mergeReady(ready, next)
		}

		if s.tracker.Done() {
			break
		}

		c := <-done
		next, err := s.finish(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", frameNo, err)
		}
		ready = mergeReady(ready, next)
	}

	r := s.report(frameNo, order, time.Since(start))
	logger.Debug("Frame finished.", "success", r.Success, "elapsed", r.Elapsed)
	return r, nil
}

// dispatch releases stage i onto the pool. It reports false when the stage
// has no jobs and must be finished by the caller.
func (s *Schedule) dispatch(ctx context.Context, pool Submitter, i int, done chan<- completion) bool {
	decl := s.plan.Stage(i)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Dispatching stage.", "stage", decl.Name, "jobs", len(decl.Jobs))

	s.state.Dispatch(i, len(decl.Jobs), time.Now())
	if len(decl.Jobs) == 0 {
		return false
	}

	for j, job := range decl.Jobs {
		jobDone := func() {
			if s.state.JobDone(i) {
				done <- completion{stage: i, at: time.Now()}
			}
		}
		task := workerpool.Task{
			Label: fmt.Sprintf("%s[%d]", decl.Name, j),
			Run: func(context.Context) {
				defer jobDone()
				if err := runJob(ctx, job); err != nil {
					s.state.RecordError(i, &JobError{Stage: decl.Name, Job: j, Err: err})
				}
			},
		}
		if err := pool.Submit(task); err != nil {
			logger.Error("Failed to submit job.", "stage", decl.Name, "job", j, "error", err)
			s.state.RecordError(i, &JobError{Stage: decl.Name, Job: j, Err: err})
			jobDone()
		}
	}
	return true
}

// runJob runs one job and converts a panic into a *PanicError.
func runJob(ctx context.Context, job stage.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return job.Run(ctx)
}

// finish closes out a stage whose jobs are all done and returns the
// dependents it unlocked.
func (s *Schedule) finish(ctx context.Context, c completion) ([]int, error) {
	name := s.plan.Name(c.stage)
	logger := ctxlog.FromContext(ctx)
	if st := s.state.Finish(c.stage, c.at); st == stagestate.Failed {
		logger.Warn("Stage failed.", "stage", name, "error", s.state.Err(c.stage))
	} else {
		logger.Debug("Stage completed.", "stage", name, "duration", s.state.Duration(c.stage))
	}
	return s.tracker.Complete(c.stage)
}

// shouldSkip reports whether stage i must be skipped under the policy.
func (s *Schedule) shouldSkip(i int) bool {
	if s.policy != SkipDependents {
		return false
	}
	for _, p := range s.plan.Predecessors(i) {
		if st := s.state.Status(p); st == stagestate.Failed || st == stagestate.Skipped {
			return true
		}
	}
	return false
}

func (s *Schedule) report(frameNo uint64, order []string, elapsed time.Duration) *Report {
	r := &Report{
		Frame:         frameNo,
		Durations:     make(map[string]time.Duration, s.plan.Len()),
		Errors:        make(map[string]error),
		DispatchOrder: order,
		Elapsed:       elapsed,
	}
	for i := 0; i < s.plan.Len(); i++ {
		name := s.plan.Name(i)
		switch s.state.Status(i) {
		case stagestate.Failed:
			r.Failed = append(r.Failed, name)
			r.Errors[name] = s.state.Err(i)
			r.Durations[name] = s.state.Duration(i)
		case stagestate.Skipped:
			r.Skipped = append(r.Skipped, name)
		default:
			r.Durations[name] = s.state.Duration(i)
		}
	}
	r.Success = len(r.Failed) == 0 && len(r.Skipped) == 0
	return r
}

// mergeReady adds newly ready stages and keeps the queue ascending, so ties
// are always broken by declaration order.
func mergeReady(ready, next []int) []int {
	if len(next) == 0 {
		return ready
	}
	ready = append(ready, next...)
	slices.Sort(ready)
	return ready
}
