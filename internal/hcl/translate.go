package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateStage converts a raw stage block into the agnostic model.
func (l *Loader) translateStage(ctx context.Context, file string, sb *stageBlock) (*config.Stage, error) {
	logger := ctxlog.FromContext(ctx).With("stage", sb.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL stage to internal config model.")

	reads, err := stringList(ctx, sb.Reads, "reads")
	if err != nil {
		return nil, fmt.Errorf("stage '%s' in %s: %w", sb.Name, file, err)
	}
	writes, err := stringList(ctx, sb.Writes, "writes")
	if err != nil {
		return nil, fmt.Errorf("stage '%s' in %s: %w", sb.Name, file, err)
	}
	after, err := stageRefs(ctx, sb.After)
	if err != nil {
		return nil, fmt.Errorf("stage '%s' in %s: %w", sb.Name, file, err)
	}

	s := &config.Stage{
		Name:   sb.Name,
		Reads:  reads,
		Writes: writes,
		After:  after,
		Source: file,
	}
	for _, jb := range sb.Jobs {
		j, err := translateJob(ctx, file, jb)
		if err != nil {
			return nil, fmt.Errorf("stage '%s' in %s: %w", sb.Name, file, err)
		}
		s.Jobs = append(s.Jobs, j)
	}
	return s, nil
}

// translateJob resolves the count meta-argument and keeps every other
// attribute as an unevaluated expression.
func translateJob(ctx context.Context, file string, jb *jobBlock) (*config.Job, error) {
	count := 1
	if isExprDefined(ctx, jb.Count, "count") {
		if diags := gohcl.DecodeExpression(jb.Count, nil, &count); diags.HasErrors() {
			return nil, fmt.Errorf("job '%s': invalid count: %w", jb.Kind, diags)
		}
		if count < 0 {
			return nil, fmt.Errorf("job '%s': count must not be negative, got %d", jb.Kind, count)
		}
	}

	attrs, diags := jb.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("job '%s': %w", jb.Kind, diags)
	}
	args := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		args[name] = attr.Expr
	}

	return &config.Job{
		Kind:      jb.Kind,
		Count:     count,
		Arguments: args,
		Source:    fmt.Sprintf("%s:%d", file, jb.Remain.MissingItemRange().Start.Line),
	}, nil
}

// stringList evaluates a static list of resource names.
func stringList(ctx context.Context, expr hcl.Expression, attr string) ([]string, error) {
	if !isExprDefined(ctx, expr, attr) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid '%s': %w", attr, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("'%s' must be a list of strings: %w", attr, err)
	}
	var out []string
	if err := gocty.FromCtyValue(listVal, &out); err != nil {
		return nil, fmt.Errorf("'%s' must be a list of strings: %w", attr, err)
	}
	return out, nil
}

// stageRefs reads the `after` list. Elements are either `stage.<name>`
// traversals or plain strings.
func stageRefs(ctx context.Context, expr hcl.Expression) ([]string, error) {
	if !isExprDefined(ctx, expr, "after") {
		return nil, nil
	}
	elems, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid 'after': %w", diags)
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if trav, tdiags := hcl.AbsTraversalForExpr(e); !tdiags.HasErrors() {
			if len(trav) == 2 && trav.RootName() == "stage" {
				if attr, ok := trav[1].(hcl.TraverseAttr); ok {
					out = append(out, attr.Name)
					continue
				}
			}
			return nil, fmt.Errorf("invalid 'after' reference at %s: expected stage.<name>", e.Range())
		}

		var name string
		if diags := gohcl.DecodeExpression(e, nil, &name); diags.HasErrors() {
			return nil, fmt.Errorf("invalid 'after' element: %w", diags)
		}
		out = append(out, name)
	}
	return out, nil
}

// isExprDefined checks if an HCL expression was actually present in the
// source. gohcl fills omitted optional attributes with zero-width synthetic
// expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}
