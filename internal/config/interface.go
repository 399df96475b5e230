package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the bridge between raw job arguments and the Go input structs
// declared by job kinds.
type Converter interface {
	// DecodeArguments evaluates args for the job copy at index and stores
	// them into the fields of target, a pointer to a struct with `cty` tags.
	// Fields without a matching argument keep their current value.
	DecodeArguments(ctx context.Context, target any, args map[string]hcl.Expression, index int) error

	// ToCtyValue converts a native Go value into its cty.Value equivalent.
	ToCtyValue(v any) (cty.Value, error)
}
