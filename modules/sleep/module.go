// Package sleep provides the "sleep" job kind, a stand-in for CPU- or
// IO-bound work of a known duration.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a sleep job.
type Input struct {
	Duration string `cty:"duration,required"`
	Label    string `cty:"label"`
}

// NewJob parses the duration up front so bad values fail at load time.
func NewJob(input *Input) (stage.Job, error) {
	d, err := time.ParseDuration(input.Duration)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", input.Duration, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %s", d)
	}
	label := input.Label
	return stage.JobFunc(func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Sleeping.", "label", label, "duration", d)

		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("sleep %q interrupted: %w", label, ctx.Err())
		}
	}), nil
}

// Register registers the job kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("sleep", &registry.JobKind{
		Description: "Waits for a fixed duration.",
		NewInput:    func() any { return new(Input) },
		Build: func(_ context.Context, input any) (stage.Job, error) {
			return NewJob(input.(*Input))
		},
	})
}
