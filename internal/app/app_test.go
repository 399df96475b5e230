package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tickgrid/internal/hcl"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/specialistvlad/tickgrid/modules/fail"
)

const renderGrid = `
stage "extract" {
  reads  = ["Transform"]
  writes = ["RenderData"]
  job "sleep" {
    count    = 2
    duration = "2ms"
  }
}

stage "physics" {
  reads = ["PhysicsState"]
  job "sleep" {
    duration = "2ms"
  }
}

stage "prepare" {
  reads  = ["RenderData"]
  writes = ["DrawList"]
  job "print" {
    message = "prepared"
  }
}

stage "record" {
  reads = ["DrawList"]
  after = [stage.physics]
}
`

func newTestApp(t *testing.T, grid string, mutate func(*Config)) (*App, *testutil.SafeBuffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(grid), 0o600))

	cfg := Config{GridPath: path, WorkerCount: 2, Frames: 1, LogLevel: "debug", LogFormat: "text"}
	if mutate != nil {
		mutate(&cfg)
	}
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	a, err := NewApp(out, validated, hcl.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("TICKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})
	return a, out
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	valid := Config{GridPath: "grid.hcl", WorkerCount: 1, Frames: 1}
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "skip policy", mutate: func(c *Config) { c.FailurePolicy = "skip" }},
		{name: "missing grid", mutate: func(c *Config) { c.GridPath = "" }, wantErr: "GridPath"},
		{name: "zero workers", mutate: func(c *Config) { c.WorkerCount = 0 }, wantErr: "WorkerCount"},
		{name: "zero frames", mutate: func(c *Config) { c.Frames = 0 }, wantErr: "Frames"},
		{name: "bad policy", mutate: func(c *Config) { c.FailurePolicy = "halt" }, wantErr: "FailurePolicy"},
		{name: "bad port", mutate: func(c *Config) { c.HealthcheckPort = 70000 }, wantErr: "HealthcheckPort"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestNewApp_LoadFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := &Config{GridPath: filepath.Join(t.TempDir(), "missing"), WorkerCount: 1, Frames: 1}

	// --- Act ---
	a, err := NewApp(&bytes.Buffer{}, cfg, hcl.NewLoader())

	// --- Assert ---
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Run_RendersEveryFrame(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, out := newTestApp(t, renderGrid, func(c *Config) { c.Frames = 3 })

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	report := a.LastReport()
	require.NotNil(t, report)
	assert.EqualValues(t, 3, report.Frame)
	assert.True(t, report.Success)
	assert.ElementsMatch(t, []string{"extract", "physics", "prepare", "record"}, report.DispatchOrder)
	assert.Equal(t, []string{"extract", "physics"}, report.DispatchOrder[:2])

	logs := out.String()
	assert.Equal(t, 3, out.Count("prepared"), "print job should run once per frame")
	assert.Contains(t, logs, "run_id="+a.RunID())
	assert.Contains(t, logs, "extract -> prepare (implicit: RenderData)")
}

func TestApp_Run_FailedFrameIsReported(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
stage "simulate" {
  writes = ["World"]
  job "fail" {
    every   = 2
    message = "solver diverged"
  }
}

stage "present" {
  reads = ["World"]
}
`
	a, _ := newTestApp(t, grid, func(c *Config) {
		c.Frames = 2
		c.FailurePolicy = "skip"
	})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFramesFailed))
	assert.True(t, errors.Is(err, fail.ErrInjected))
	assert.Contains(t, err.Error(), "1 of 2")

	report := a.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, []string{"simulate"}, report.Failed)
	assert.Equal(t, []string{"present"}, report.Skipped)
}

func TestApp_Run_UnknownJobKind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, `
stage "only" {
  job "teleport" {}
}
`, nil)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job kind 'teleport'")
	assert.Nil(t, a.LastReport())
}

func TestApp_Run_CyclicGrid(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, `
stage "a" {
  after = [stage.b]
}

stage "b" {
  after = [stage.a]
}
`, nil)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic dependency: a -> b -> a")
}

func TestApp_Run_CancelledContext(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, renderGrid, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	err := a.Run(ctx)

	// --- Assert ---
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, a.LastReport())
}

func TestApp_Handler(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, renderGrid, nil)
	handler := a.Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	// --- Act & Assert ---
	health := get("/health")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "OK\n", health.Body.String())

	assert.Equal(t, http.StatusNotFound, get("/report").Code, "no report before the first frame")

	require.NoError(t, a.Run(context.Background()))
	rec := get("/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view reportView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, a.RunID(), view.RunID)
	assert.EqualValues(t, 1, view.Frame)
	assert.True(t, view.Success)
	assert.Empty(t, view.Failed)
	assert.Empty(t, view.Errors)
	if diff := cmp.Diff([]string{"extract", "physics", "prepare", "record"}, view.DispatchOrder, cmpopts.SortSlices(func(x, y string) bool { return x < y })); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, view.Durations, 4)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var jsonOut, textOut bytes.Buffer

	// --- Act ---
	newLogger("warn", "json", &jsonOut).Info("hidden")
	newLogger("warn", "json", &jsonOut).Warn("shown", "k", "v")
	newLogger("debug", "text", &textOut).Debug("visible")

	// --- Assert ---
	assert.NotContains(t, jsonOut.String(), "hidden")
	assert.Contains(t, jsonOut.String(), `"msg":"shown"`)
	assert.Contains(t, textOut.String(), "msg=visible")
}
