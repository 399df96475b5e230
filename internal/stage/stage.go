// Package stage defines the resolved declarations the scheduler consumes.
// How a declaration was authored (Go code, an HCL file, something else) is
// irrelevant past this point.
package stage

import (
	"context"

	"github.com/specialistvlad/tickgrid/internal/resource"
)

// Job is an executable unit. Jobs of the same stage are assumed independent
// with respect to that stage's declared resources and may run in parallel.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts an ordinary function to the Job interface.
type JobFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Declaration describes one stage: a uniquely named group of jobs sharing
// ordering and resource-access declarations.
type Declaration struct {
	// Name must be unique within a schedule.
	Name string
	// Jobs run in any order, possibly concurrently. A stage may have none.
	Jobs []Job
	// Access lists the resources the stage's jobs read and write.
	Access resource.Access
	// After names stages that must finish before this one starts.
	After []string
}

// New is a small constructor used heavily by tests and embedding programs.
func New(name string, access resource.Access, after []string, jobs ...Job) Declaration {
	return Declaration{Name: name, Jobs: jobs, Access: access, After: after}
}
