package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Module is the interface that all job kind packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// JobKind holds the compiled Go parts of one job kind.
type JobKind struct {
	// Description is shown in debug output.
	Description string
	// NewInput returns a pointer to a fresh input struct. Field values set
	// here act as defaults for omitted arguments.
	NewInput func() any
	// Build turns a decoded input into a runnable job.
	Build func(ctx context.Context, input any) (stage.Job, error)
}

// Registry holds every job kind known to one application instance.
type Registry struct {
	kinds map[string]*JobKind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{kinds: make(map[string]*JobKind)}
}

// Register adds a job kind. Registering the same name twice is a programming
// error and panics.
func (r *Registry) Register(kind string, k *JobKind) {
	if _, exists := r.kinds[kind]; exists {
		panic(fmt.Sprintf("job kind '%s' already registered", kind))
	}
	if k == nil || k.NewInput == nil || k.Build == nil {
		panic(fmt.Sprintf("job kind '%s' is missing NewInput or Build", kind))
	}
	slog.Debug("Registering job kind.", "kind", kind)
	r.kinds[kind] = k
}

// RegisterModules lets each module register its job kinds.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the job kind registered under kind.
func (r *Registry) Lookup(kind string) (*JobKind, bool) {
	k, ok := r.kinds[kind]
	return k, ok
}

// Kinds returns all registered kind names, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
