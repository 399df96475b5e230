// Package fail provides the "fail" job kind, used to exercise failure
// policies from stage files.
package fail

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a fail job.
type Input struct {
	Message string `cty:"message"`
	// Panic makes the job panic instead of returning an error.
	Panic bool `cty:"panic"`
	// Every fails only on every Nth run of the job; runs in between succeed.
	Every int `cty:"every"`
}

// ErrInjected is wrapped by every error a fail job returns.
var ErrInjected = errors.New("injected failure")

func newInput() *Input {
	return &Input{Message: "failed on purpose", Every: 1}
}

// NewJob returns a job failing as configured.
func NewJob(input *Input) (stage.Job, error) {
	if input.Every < 1 {
		return nil, fmt.Errorf("every must be at least 1, got %d", input.Every)
	}
	var runs atomic.Int64
	every := int64(input.Every)
	msg := input.Message
	shouldPanic := input.Panic

	return stage.JobFunc(func(ctx context.Context) error {
		n := runs.Add(1)
		if n%every != 0 {
			return nil
		}
		ctxlog.FromContext(ctx).Debug("Injecting failure.", "run", n, "panic", shouldPanic)
		if shouldPanic {
			panic(msg)
		}
		return fmt.Errorf("%w: %s", ErrInjected, msg)
	}), nil
}

// Register registers the job kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("fail", &registry.JobKind{
		Description: "Fails or panics on purpose.",
		NewInput:    func() any { return newInput() },
		Build: func(_ context.Context, input any) (stage.Job, error) {
			return NewJob(input.(*Input))
		},
	})
}
