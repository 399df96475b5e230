// Package workerpool provides a fixed-size pool of goroutines that execute
// submitted tasks from a single unbounded FIFO queue.
//
// The pool is constructed explicitly and passed to whoever needs it; there
// is no package-level pool. Submit never blocks the caller, so a coordinator
// can keep feeding work while it waits on completions.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
)

var (
	// ErrInvalidSize is returned by New for a worker count below one.
	ErrInvalidSize = errors.New("worker pool size must be at least 1")
	// ErrClosed is returned by Submit once Shutdown has been called.
	ErrClosed = errors.New("worker pool is shut down")
)

// Task is one unit of work for the pool.
type Task struct {
	// Label identifies the task in logs.
	Label string
	// Run is executed on a worker goroutine with the pool's context.
	Run func(ctx context.Context)
	// OnPanic, if set, receives the value recovered from a panicking Run
	// together with the goroutine stack.
	OnPanic func(recovered any, stack []byte)
}

// Stats is a snapshot of the pool's lifetime counters.
type Stats struct {
	Submitted uint64
	Completed uint64
	Panicked  uint64
	Queued    int
}

// Pool is a fixed set of workers draining a shared FIFO queue.
type Pool struct {
	ctx  context.Context
	size int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  *linkedlistqueue.Queue
	closed bool

	wg   sync.WaitGroup
	done chan struct{}

	submitted atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
}

// New starts n workers. ctx supplies the logger and is handed to every task;
// cancelling it does not stop the workers, Shutdown does.
func New(ctx context.Context, n int) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	p := &Pool{
		ctx:   ctx,
		size:  n,
		queue: linkedlistqueue.New(),
		done:  make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	ctxlog.FromContext(ctx).Debug("Starting worker pool.", "workers", n)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit enqueues t. It never blocks on busy workers.
func (p *Pool) Submit(t Task) error {
	if t.Run == nil {
		return errors.New("task has no Run function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.queue.Enqueue(t)
	p.submitted.Add(1)
	p.cond.Signal()
	return nil
}

// Shutdown stops accepting tasks, lets workers drain everything already
// queued, and waits for them to exit. If ctx ends first it returns ctx.Err();
// the workers still finish draining in the background. Calling Shutdown more
// than once is safe.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		ctxlog.FromContext(p.ctx).Debug("Worker pool stopped.", "completed", p.completed.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := p.queue.Size()
	p.mu.Unlock()
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Queued:    queued,
	}
}

// next blocks until a task is available or the pool is closed and empty.
func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.queue.Empty() && !p.closed {
		p.cond.Wait()
	}
	v, ok := p.queue.Dequeue()
	if !ok {
		return Task{}, false
	}
	return v.(Task), true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(p.ctx).With("worker_id", id)
	logger.Debug("Worker started.")

	for {
		t, ok := p.next()
		if !ok {
			break
		}
		p.run(logger, t)
		p.completed.Add(1)
	}
	logger.Debug("Worker finished.")
}

// run executes a single task, containing any panic at the task boundary.
func (p *Pool) run(logger *slog.Logger, t Task) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			p.panicked.Add(1)
			logger.Error("Task panicked.", "task", t.Label, "panic", r)
			if t.OnPanic != nil {
				t.OnPanic(r, stack)
			}
		}
	}()
	t.Run(p.ctx)
}
