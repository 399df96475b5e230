// Package print provides the "print" job kind: it writes a message, and
// optionally a rendered value, each time the job runs.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives printed lines. Defaults to os.Stdout.
	Out io.Writer
}

// Input defines the arguments of a print job.
type Input struct {
	Message string    `cty:"message"`
	Value   cty.Value `cty:"value"`
}

// Render formats the input as a single line.
func Render(input *Input) (string, error) {
	if input.Value.IsNull() {
		return input.Message, nil
	}
	if !input.Value.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}
	b, err := ctyjson.Marshal(input.Value, input.Value.Type())
	if err != nil {
		return "", fmt.Errorf("failed to render value: %w", err)
	}
	if input.Message == "" {
		return string(b), nil
	}
	return input.Message + " " + string(b), nil
}

// NewJob validates input and returns the runnable print job.
func (m *Module) NewJob(ctx context.Context, input *Input) (stage.Job, error) {
	line, err := Render(input)
	if err != nil {
		return nil, err
	}
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	return stage.JobFunc(func(ctx context.Context) error {
		ctxlog.FromContext(ctx).Debug("Printing message.", "message", line)
		_, err := fmt.Fprintln(out, line)
		return err
	}), nil
}

// Register registers the job kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("print", &registry.JobKind{
		Description: "Writes a message and an optional value.",
		NewInput:    func() any { return new(Input) },
		Build: func(ctx context.Context, input any) (stage.Job, error) {
			return m.NewJob(ctx, input.(*Input))
		},
	})
}
