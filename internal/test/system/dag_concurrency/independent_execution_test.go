package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/test/system/harness"
	"github.com/specialistvlad/tickgrid/internal/testutil"
)

// Test for: stages with disjoint or read-only access run concurrently.
func TestDagConcurrency_IndependentExecution(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
		stage "audio" {
			writes = ["AudioBuffer"]
			job "record" {
				label = "audio"
				sleep = "60ms"
			}
		}
		stage "culling" {
			reads  = ["Transform"]
			writes = ["VisibleSet"]
			job "record" {
				label = "culling"
				sleep = "60ms"
			}
		}
		stage "minimap" {
			reads = ["Transform"]
			job "record" {
				label = "minimap"
				sleep = "60ms"
			}
		}
	`
	rec := testutil.NewRecorder()

	// --- Act ---
	res := harness.Run(t, map[string]string{"main.hcl": grid}, app.Config{WorkerCount: 3},
		&testutil.RecordingModule{Recorder: rec})

	// --- Assert ---
	require.NoError(t, res.RunErr)
	testutil.AssertOverlapped(t, rec, "audio", "culling")
	testutil.AssertOverlapped(t, rec, "culling", "minimap")
	testutil.AssertOverlapped(t, rec, "audio", "minimap")

	audio, _ := rec.Window("audio")
	minimap, _ := rec.Window("minimap")
	assert.Less(t, minimap.End.Sub(audio.Start).Milliseconds(), int64(170), "three 60ms stages should not run back to back")
}
