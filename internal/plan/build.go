package plan

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/resource"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Build constructs a complete, validated execution plan from ordered stage
// declarations. On any structural problem it returns a *Error and no plan.
func Build(ctx context.Context, decls []stage.Declaration) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting plan construction.", "stage_count", len(decls))

	// First pass: register stages and validate names.
	p, err := createStages(decls)
	if err != nil {
		return nil, err
	}
	if err := validatePredecessors(p); err != nil {
		return nil, err
	}
	logger.Debug("Build: Stage validation complete.")

	// Second pass: author-declared ordering.
	linkExplicit(ctx, p)
	logger.Debug("Build: Explicit linking complete.", "edge_count", len(p.edges))

	// Third pass: conflict-derived ordering.
	added := linkImplicit(ctx, p)
	logger.Debug("Build: Implicit linking complete.", "implicit_edges", added)

	if err := p.detectCycles(); err != nil {
		logger.Debug("Build: Cycle detected.", "error", err)
		return nil, err
	}
	logger.Debug("Build: Plan construction successful.", "edge_count", len(p.edges))
	return p, nil
}

// MustBuild is like Build but panics on error. It is meant for statically
// known stage sets, such as those assembled in tests.
func MustBuild(ctx context.Context, decls []stage.Declaration) *Plan {
	p, err := Build(ctx, decls)
	if err != nil {
		panic(fmt.Sprintf("plan: %v", err))
	}
	return p
}

// createStages copies the declarations and indexes them by name.
func createStages(decls []stage.Declaration) (*Plan, error) {
	p := &Plan{
		stages: make([]stage.Declaration, len(decls)),
		index:  make(map[string]int, len(decls)),
		succ:   make([][]int, len(decls)),
		pred:   make([][]int, len(decls)),
	}
	accesses := make([]resource.Access, len(decls))
	for i, d := range decls {
		if d.Name == "" {
			return nil, &Error{Kind: ErrEmptyStageName}
		}
		if _, exists := p.index[d.Name]; exists {
			return nil, duplicateName(d.Name)
		}
		p.index[d.Name] = i
		p.stages[i] = d
		accesses[i] = d.Access
	}
	p.table = resource.NewTable(accesses)
	return p, nil
}

func validatePredecessors(p *Plan) error {
	for _, d := range p.stages {
		for _, name := range d.After {
			if name == d.Name {
				return selfDependency(d.Name)
			}
			if _, ok := p.index[name]; !ok {
				return unknownPredecessor(d.Name, name)
			}
		}
	}
	return nil
}
