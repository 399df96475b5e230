package testutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// ErrRecorded is returned by "record" jobs declared with fail = true.
var ErrRecorded = errors.New("recorded failure")

// RecordInput defines the arguments of a "record" job.
type RecordInput struct {
	Label string `cty:"label,required"`
	Sleep string `cty:"sleep"`
	Fail  bool   `cty:"fail"`
}

// RecordingModule registers the "record" job kind, which notes each run's
// execution window in Recorder under its label.
type RecordingModule struct {
	Recorder *Recorder
}

// Register implements the registry.Module interface.
func (m *RecordingModule) Register(r *registry.Registry) {
	r.Register("record", &registry.JobKind{
		Description: "Records its execution window for test assertions.",
		NewInput:    func() any { return new(RecordInput) },
		Build: func(_ context.Context, raw any) (stage.Job, error) {
			input := raw.(*RecordInput)
			var d time.Duration
			if input.Sleep != "" {
				var err error
				if d, err = time.ParseDuration(input.Sleep); err != nil {
					return nil, fmt.Errorf("invalid sleep %q: %w", input.Sleep, err)
				}
			}
			if input.Fail {
				return FailJob(m.Recorder, input.Label, fmt.Errorf("%w: %s", ErrRecorded, input.Label)), nil
			}
			return SleepJob(m.Recorder, input.Label, d), nil
		},
	})
}
