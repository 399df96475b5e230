package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/test/system/harness"
	"github.com/specialistvlad/tickgrid/internal/testutil"
)

// Test for: `count` expands a job block into parallel copies within one stage.
func TestHclFeatures_CountIndex(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
		stage "skinning" {
			job "record" {
				count = 3
				label = "skin-${count.index}"
				sleep = "40ms"
			}
		}
		stage "upload" {
			after = [stage.skinning]
			job "record" {
				label = "upload"
			}
		}
	`
	rec := testutil.NewRecorder()

	// --- Act ---
	res := harness.Run(t, map[string]string{"main.hcl": grid}, app.Config{WorkerCount: 3},
		&testutil.RecordingModule{Recorder: rec})

	// --- Assert ---
	require.NoError(t, res.RunErr)
	for _, label := range []string{"skin-0", "skin-1", "skin-2"} {
		testutil.AssertFinishedBefore(t, rec, label, "upload")
	}
	testutil.AssertOverlapped(t, rec, "skin-0", "skin-2")
	assert.ElementsMatch(t, []string{"skin-0", "skin-1", "skin-2", "upload"}, rec.Labels())
}

// Test for: `env.NAME` exposes the process environment to job arguments.
// Not parallel: t.Setenv mutates the process environment.
func TestHclFeatures_EnvVariable(t *testing.T) {
	// --- Arrange ---
	t.Setenv("TICKGRID_SYSTEM_LABEL", "from-env")
	grid := `
		stage "only" {
			job "record" {
				label = env.TICKGRID_SYSTEM_LABEL
			}
		}
	`
	rec := testutil.NewRecorder()

	// --- Act ---
	res := harness.Run(t, map[string]string{"main.hcl": grid}, app.Config{},
		&testutil.RecordingModule{Recorder: rec})

	// --- Assert ---
	require.NoError(t, res.RunErr)
	assert.Equal(t, []string{"from-env"}, rec.Labels())
}
