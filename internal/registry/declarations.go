package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/resource"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Declarations turns a loaded model into stage declarations, in model order,
// building every job through its registered kind.
func (r *Registry) Declarations(ctx context.Context, model *config.Model, conv config.Converter) ([]stage.Declaration, error) {
	logger := ctxlog.FromContext(ctx)
	decls := make([]stage.Declaration, 0, len(model.Stages))

	for _, s := range model.Stages {
		stageLogger := logger.With("stage", s.Name)
		var jobs []stage.Job
		for _, j := range s.Jobs {
			built, err := r.BuildJobs(ctxlog.WithLogger(ctx, stageLogger), conv, j)
			if err != nil {
				return nil, fmt.Errorf("stage '%s' (%s): %w", s.Name, s.Source, err)
			}
			jobs = append(jobs, built...)
		}
		stageLogger.Debug("Stage declaration assembled.", "jobs", len(jobs), "reads", s.Reads, "writes", s.Writes, "after", s.After)

		decls = append(decls, stage.Declaration{
			Name:   s.Name,
			Jobs:   jobs,
			Access: resource.NewAccess(toIDs(s.Reads), toIDs(s.Writes)),
			After:  s.After,
		})
	}
	return decls, nil
}

// BuildJobs decodes and constructs every copy of a job block.
func (r *Registry) BuildJobs(ctx context.Context, conv config.Converter, j *config.Job) ([]stage.Job, error) {
	kind, ok := r.kinds[j.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown job kind '%s' at %s", j.Kind, j.Source)
	}
	count := j.Count
	if count < 0 {
		return nil, fmt.Errorf("job '%s' at %s: count must not be negative, got %d", j.Kind, j.Source, count)
	}

	jobs := make([]stage.Job, 0, count)
	for i := 0; i < count; i++ {
		input := kind.NewInput()
		if err := conv.DecodeArguments(ctx, input, j.Arguments, i); err != nil {
			return nil, fmt.Errorf("job '%s' at %s, index %d: %w", j.Kind, j.Source, i, err)
		}
		job, err := kind.Build(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("job '%s' at %s, index %d: %w", j.Kind, j.Source, i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func toIDs(names []string) []resource.ID {
	out := make([]resource.ID, len(names))
	for i, n := range names {
		out[i] = resource.ID(n)
	}
	return out
}
