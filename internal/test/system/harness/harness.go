// Package harness runs complete tickgrid apps from HCL sources for the
// system tests.
package harness

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/hcl"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/testutil"
)

// Result is what a system test inspects after a run.
type Result struct {
	App    *app.App
	Logs   *testutil.SafeBuffer
	RunErr error
}

// Run writes files to a temporary grid directory, builds an App over it with
// the given modules and runs it once. Zero config fields get test defaults:
// one frame, four workers, fail-soft and debug logging.
func Run(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *Result {
	t.Helper()

	cfg.GridPath = testutil.WriteGrid(t, files)
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	if cfg.Frames == 0 {
		cfg.Frames = 1
	}
	cfg.LogLevel = "debug"

	validated, err := app.NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	logs := &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("TICKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	a, err := app.NewApp(logs, validated, hcl.NewLoader(), modules...)
	if err != nil {
		return &Result{Logs: logs, RunErr: err}
	}
	return &Result{App: a, Logs: logs, RunErr: a.Run(context.Background())}
}
