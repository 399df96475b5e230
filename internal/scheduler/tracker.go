package scheduler

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/plan"
)

var (
	// ErrNotReady is returned when completing a stage whose predecessors have
	// not all finished.
	ErrNotReady = errors.New("stage is not ready")
	// ErrAlreadyComplete is returned when completing a stage twice in one frame.
	ErrAlreadyComplete = errors.New("stage already complete")
)

// Tracker is the per-frame readiness state over an immutable plan.
type Tracker struct {
	succ     [][]int
	indegree []int

	pending   []int
	completed []bool
	remaining int
}

// New creates a tracker for p, already reset for a first frame.
func New(p *plan.Plan) *Tracker {
	n := p.Len()
	t := &Tracker{
		succ:      make([][]int, n),
		indegree:  make([]int, n),
		pending:   make([]int, n),
		completed: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		t.succ[i] = p.Successors(i)
		t.indegree[i] = p.InDegree(i)
	}
	t.Reset()
	return t
}

// Reset restores every unresolved-predecessor count from the plan.
func (t *Tracker) Reset() {
	copy(t.pending, t.indegree)
	clear(t.completed)
	t.remaining = len(t.pending)
}

// Ready returns the stages with no predecessors, ascending.
func (t *Tracker) Ready() []int {
	var out []int
	for i, d := range t.indegree {
		if d == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Complete marks stage i finished and returns the successors that became
// ready as a result, ascending.
func (t *Tracker) Complete(i int) ([]int, error) {
	if i < 0 || i >= len(t.pending) {
		return nil, fmt.Errorf("stage index %d out of range", i)
	}
	if t.completed[i] {
		return nil, fmt.Errorf("stage %d: %w", i, ErrAlreadyComplete)
	}
	if t.pending[i] != 0 {
		return nil, fmt.Errorf("stage %d has %d unfinished predecessors: %w", i, t.pending[i], ErrNotReady)
	}

	t.completed[i] = true
	t.remaining--

	var unlocked []int
	for _, s := range t.succ[i] {
		t.pending[s]--
		if t.pending[s] == 0 {
			unlocked = append(unlocked, s)
		}
	}
	return unlocked, nil
}

// Remaining returns the number of stages not yet completed.
func (t *Tracker) Remaining() int { return t.remaining }

// Done reports whether every stage has completed.
func (t *Tracker) Done() bool { return t.remaining == 0 }
