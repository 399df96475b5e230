package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/plan"
	"github.com/specialistvlad/tickgrid/internal/test/system/harness"
	"github.com/specialistvlad/tickgrid/internal/testutil"
)

// Test for: explicit `after` constraints hold regardless of declaration order.
func TestHclFeatures_ExplicitDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// "present" is declared first but must still run after "simulate".
	grid := `
		stage "present" {
			after = [stage.simulate, "input"]
			job "record" {
				label = "present"
			}
		}
		stage "simulate" {
			job "record" {
				label = "simulate"
				sleep = "30ms"
			}
		}
		stage "input" {
			job "record" {
				label = "input"
				sleep = "10ms"
			}
		}
	`
	rec := testutil.NewRecorder()

	// --- Act ---
	res := harness.Run(t, map[string]string{"main.hcl": grid}, app.Config{WorkerCount: 2},
		&testutil.RecordingModule{Recorder: rec})

	// --- Assert ---
	require.NoError(t, res.RunErr)
	testutil.AssertFinishedBefore(t, rec, "simulate", "present")
	testutil.AssertFinishedBefore(t, rec, "input", "present")

	report := res.App.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, []string{"simulate", "input", "present"}, report.DispatchOrder)
}

// Test for: an `after` reference to an undeclared stage stops the run before any frame.
func TestHclFeatures_UnknownPredecessor(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
		stage "present" {
			after = [stage.ghost]
		}
	`

	// --- Act ---
	res := harness.Run(t, map[string]string{"main.hcl": grid}, app.Config{},
		&testutil.RecordingModule{Recorder: testutil.NewRecorder()})

	// --- Assert ---
	require.ErrorIs(t, res.RunErr, plan.ErrUnknownPredecessor)
	assert.Contains(t, res.RunErr.Error(), `stage "present" runs after undeclared stage "ghost"`)
	assert.Nil(t, res.App.LastReport())
}
