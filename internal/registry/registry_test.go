package registry

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/resource"
	"github.com/specialistvlad/tickgrid/internal/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type echoInput struct {
	Label string `cty:"label,required"`
	Index int    `cty:"index"`
}

// indexConverter is a minimal config.Converter that stamps the copy index
// into the input and copies the argument names into Label.
type indexConverter struct{}

func (indexConverter) DecodeArguments(_ context.Context, target any, args map[string]hcl.Expression, index int) error {
	in := target.(*echoInput)
	in.Index = index
	for name := range args {
		in.Label = name
	}
	return nil
}

func (indexConverter) ToCtyValue(any) (cty.Value, error) { return cty.NilVal, nil }

type echoModule struct {
	built *[]echoInput
}

func (m echoModule) Register(r *Registry) {
	r.Register("echo", &JobKind{
		NewInput: func() any { return new(echoInput) },
		Build: func(_ context.Context, input any) (stage.Job, error) {
			in := *input.(*echoInput)
			*m.built = append(*m.built, in)
			return stage.JobFunc(func(context.Context) error { return nil }), nil
		},
	})
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	t.Parallel()

	r := New()
	var built []echoInput
	r.RegisterModules(echoModule{built: &built})

	assert.Panics(t, func() { r.RegisterModules(echoModule{built: &built}) })
	assert.Panics(t, func() { r.Register("broken", &JobKind{}) })
	assert.Equal(t, []string{"echo"}, r.Kinds())
}

func TestDeclarations_BuildsEveryCopy(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := New()
	var built []echoInput
	r.RegisterModules(echoModule{built: &built})

	model := &config.Model{Stages: []*config.Stage{
		{
			Name:   "simulate",
			Writes: []string{"World"},
			Jobs:   []*config.Job{{Kind: "echo", Count: 3, Arguments: map[string]hcl.Expression{"label": nil}}},
		},
		{
			Name:  "render",
			Reads: []string{"World"},
			After: []string{"simulate"},
		},
	}}

	// --- Act ---
	decls, err := r.Declarations(context.Background(), model, indexConverter{})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Len(t, decls[0].Jobs, 3)
	assert.True(t, decls[0].Access.Writes.Has("World"))
	assert.Empty(t, decls[1].Jobs)
	assert.Equal(t, []string{"simulate"}, decls[1].After)
	assert.True(t, decls[1].Access.Allows(resource.ID("World"), resource.Read))

	require.Len(t, built, 3)
	for i, in := range built {
		assert.Equal(t, i, in.Index)
		assert.Equal(t, "label", in.Label)
	}
}

func TestDeclarations_UnknownKind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := &config.Model{Stages: []*config.Stage{
		{Name: "a", Source: "grid.hcl", Jobs: []*config.Job{{Kind: "teleport", Count: 1, Source: "grid.hcl:3"}}},
	}}

	// --- Act ---
	_, err := New().Declarations(context.Background(), model, indexConverter{})

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job kind 'teleport'")
	assert.Contains(t, err.Error(), "grid.hcl:3")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	type badInput struct {
		Ch chan int `cty:"ch"`
	}
	type dupInput struct {
		A string `cty:"x"`
		B string `cty:"x"`
	}
	noop := func(context.Context, any) (stage.Job, error) { return nil, nil }

	good := New()
	var built []echoInput
	good.RegisterModules(echoModule{built: &built})

	bad := New()
	bad.Register("chan", &JobKind{NewInput: func() any { return new(badInput) }, Build: noop})
	bad.Register("dup", &JobKind{NewInput: func() any { return new(dupInput) }, Build: noop})
	bad.Register("value", &JobKind{NewInput: func() any { return echoInput{} }, Build: noop})

	// --- Act ---
	goodErr := good.Validate(context.Background())
	badErr := bad.Validate(context.Background())

	// --- Assert ---
	assert.NoError(t, goodErr)
	require.Error(t, badErr)
	assert.Contains(t, badErr.Error(), "job kind 'chan', argument 'ch'")
	assert.Contains(t, badErr.Error(), "bound to both A and B")
	assert.Contains(t, badErr.Error(), "must return a pointer to a struct")
}

func TestParseTag(t *testing.T) {
	t.Parallel()

	name, req := ParseTag("url,required")
	assert.Equal(t, "url", name)
	assert.True(t, req)

	name, req = ParseTag("-")
	assert.Empty(t, name)
	assert.False(t, req)
}
