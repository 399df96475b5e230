package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrid(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeGrid(t, map[string]string{
		"frame.hcl": `
			stage "extract" {
				reads = ["Transform"]
				job "print" {
					message = "extracting"
				}
			}

			stage "physics" {
				reads = ["PhysicsState"]
			}

			stage "prepare" {
				reads  = ["RenderData"]
				writes = ["DrawList"]
				after  = [stage.extract]

				job "sleep" {
					count    = 3
					duration = "1ms"
				}
			}

			stage "record" {
				reads = ["DrawList"]
				after = ["prepare", stage.physics]
			}
		`,
		"notes.txt": "ignored",
	})

	// --- Act ---
	model, conv, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Equal(t, []string{"extract", "physics", "prepare", "record"}, model.StageNames())

	extract := model.Stages[0]
	assert.Equal(t, []string{"Transform"}, extract.Reads)
	assert.Nil(t, extract.Writes)
	assert.Nil(t, extract.After)
	require.Len(t, extract.Jobs, 1)
	assert.Equal(t, "print", extract.Jobs[0].Kind)
	assert.Equal(t, 1, extract.Jobs[0].Count)
	assert.Contains(t, extract.Jobs[0].Arguments, "message")

	assert.Empty(t, model.Stages[1].Jobs)

	prepare := model.Stages[2]
	assert.Equal(t, []string{"DrawList"}, prepare.Writes)
	assert.Equal(t, []string{"extract"}, prepare.After)
	require.Len(t, prepare.Jobs, 1)
	assert.Equal(t, 3, prepare.Jobs[0].Count)
	assert.NotContains(t, prepare.Jobs[0].Arguments, "count")

	if diff := cmp.Diff([]string{"prepare", "physics"}, model.Stages[3].After); diff != "" {
		t.Errorf("record after mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_MultipleFilesKeepWalkOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeGrid(t, map[string]string{
		"a.hcl":      `stage "first" {}`,
		"b/c.hcl":    `stage "second" {}`,
		"b/d.hcl":    `stage "third" {}`,
		"z_last.hcl": `stage "fourth" {}`,
	})

	// --- Act ---
	model, _, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, model.StageNames())
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: `stage "a" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown stage attribute",
			content: `stage "a" { priority = 1 }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "reads is not a list",
			content: `stage "a" { reads = { x = 1 } }`,
			wantErr: "'reads' must be a list of strings",
		},
		{
			name:    "bare after reference",
			content: `stage "a" {}
			          stage "b" { after = [a] }`,
			wantErr: "expected stage.<name>",
		},
		{
			name:    "negative count",
			content: `stage "a" { job "sleep" { count = -1 } }`,
			wantErr: "count must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := writeGrid(t, map[string]string{"grid.hcl": tc.content})

			// --- Act ---
			_, _, err := NewLoader().Load(context.Background(), dir)

			// --- Assert ---
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_MissingPathAndEmptyDir(t *testing.T) {
	t.Parallel()

	_, _, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, _, err = NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .hcl files")
}
