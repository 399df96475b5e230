package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks that every job kind's input is a pointer to a struct whose
// tagged fields map onto cty types, so that argument decoding cannot fail
// for structural reasons at load time.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range r.Kinds() {
		input := r.kinds[kind].NewInput()
		v := reflect.ValueOf(input)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("job kind '%s': NewInput must return a pointer to a struct, got %T", kind, input))
			continue
		}

		st := v.Elem().Type()
		seen := make(map[string]string)
		for i := 0; i < st.NumField(); i++ {
			field := st.Field(i)
			name, _ := ParseTag(field.Tag.Get("cty"))
			if !field.IsExported() || name == "" {
				continue
			}
			if prev, dup := seen[name]; dup {
				errs = append(errs, fmt.Sprintf("job kind '%s': argument '%s' is bound to both %s and %s", kind, name, prev, field.Name))
				continue
			}
			seen[name] = field.Name

			if field.Type == reflect.TypeOf(cty.Value{}) {
				logger.Debug("Job kind argument accepts any value.", "kind", kind, "argument", name)
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("job kind '%s', argument '%s': field %s has no cty equivalent: %v", kind, name, field.Name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ParseTag splits a `cty` struct tag into the argument name and whether the
// argument is required.
func ParseTag(tag string) (name string, required bool) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "-" {
		return "", false
	}
	for _, opt := range parts[1:] {
		if opt == "required" {
			required = true
		}
	}
	return name, required
}
