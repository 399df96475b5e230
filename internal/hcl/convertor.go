package hcl

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var ctyValueType = reflect.TypeOf(cty.Value{})

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	env cty.Value
}

// NewConverter creates a new HCL converter. The process environment is
// captured once and exposed to job arguments as `env.NAME`.
func NewConverter() *Converter {
	return &Converter{env: environment(os.Environ())}
}

func environment(pairs []string) cty.Value {
	vars := make(map[string]cty.Value, len(pairs))
	for _, e := range pairs {
		if k, v, ok := strings.Cut(e, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

// DecodeArguments evaluates args with `count.index` bound to index and `env`
// bound to the captured environment, then assigns them to the `cty`-tagged
// fields of target. Unknown arguments and missing required ones are errors.
func (c *Converter) DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression, index int) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"count": cty.ObjectVal(map[string]cty.Value{
				"index": cty.NumberIntVal(int64(index)),
			}),
			"env": c.env,
		},
	}

	known := make(map[string]struct{}, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)
		name, required := registry.ParseTag(fieldDef.Tag.Get("cty"))
		if !fieldDef.IsExported() || !fieldVal.CanSet() || name == "" {
			continue
		}
		known[name] = struct{}{}

		expr, provided := args[name]
		if !provided {
			if required {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}

		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("argument %q: %w", name, diags)
		}
		if err := assign(val, fieldVal); err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
		logger.Debug("Decoded job argument.", "argument", name, "index", index)
	}

	var unknown []string
	for name := range args {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unsupported argument(s) %q", unknown)
	}
	return nil
}

// assign converts val to the Go type of field and stores it.
func assign(val cty.Value, field reflect.Value) error {
	if field.Type() == ctyValueType {
		field.Set(reflect.ValueOf(val))
		return nil
	}
	if val.IsNull() {
		return nil
	}
	if !val.IsWhollyKnown() {
		return fmt.Errorf("value is not known")
	}

	ty, err := gocty.ImpliedType(reflect.Zero(field.Type()).Interface())
	if err != nil {
		return fmt.Errorf("unsupported Go type %s: %w", field.Type(), err)
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("cannot use %s as %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, field.Addr().Interface())
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
