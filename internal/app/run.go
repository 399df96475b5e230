package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/frame"
	"github.com/specialistvlad/tickgrid/internal/workerpool"
	"golang.org/x/sync/errgroup"
)

// ErrFramesFailed is returned by Run when at least one frame had a failed stage.
var ErrFramesFailed = errors.New("frames failed")

// shutdownTimeout bounds how long Run waits for the pool to drain.
const shutdownTimeout = 10 * time.Second

// Run builds the schedule from the loaded grid and executes the configured
// number of frames on a fresh worker pool. Frames keep running after a
// failed one; the failures are summarised in the returned error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	decls, err := a.registry.Declarations(ctx, a.model, a.converter)
	if err != nil {
		return fmt.Errorf("failed to build stage declarations: %w", err)
	}

	policy, _ := frame.ParseFailurePolicy(a.config.FailurePolicy)
	sched, err := frame.NewSchedule(ctx, decls, frame.WithFailurePolicy(policy))
	if err != nil {
		return err
	}
	a.logger.Info("Schedule built.", "stages", sched.Plan().Len(), "edges", len(sched.Plan().Edges()), "failure_policy", policy.String())
	a.logger.Debug("Dependency plan.", "plan", sched.Plan().Describe())

	pool, err := workerpool.New(ctx, a.config.WorkerCount)
	if err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer a.shutdownPool(pool)

	g, gctx := errgroup.WithContext(ctx)
	if a.config.HealthcheckPort > 0 {
		srv := a.newHealthCheckServer()
		g.Go(func() error { return a.serveHealthCheck(srv) })
		g.Go(func() error {
			defer a.closeHealthCheckServer(srv)
			return a.runFrames(gctx, sched, pool)
		})
	} else {
		a.logger.Debug("Health check server not started: disabled.")
		g.Go(func() error { return a.runFrames(gctx, sched, pool) })
	}

	err = g.Wait()
	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

func (a *App) runFrames(ctx context.Context, sched *frame.Schedule, pool *workerpool.Pool) error {
	a.logger.Info("Starting frames.", "frames", a.config.Frames, "workers", pool.Size())

	var failed int
	var lastErr error
	for i := 0; i < a.config.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted after %d frame(s): %w", i, err)
		}

		report, err := sched.RunFrame(ctx, pool)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}
		a.setLastReport(report)
		a.logReport(report)

		if !report.Success {
			failed++
			if ferr := report.Err(); ferr != nil {
				lastErr = ferr
			}
		}
	}

	stats := pool.Stats()
	a.logger.Info("Frames finished.", "frames", a.config.Frames, "failed", failed, "jobs", stats.Completed, "panics", stats.Panicked)

	if failed > 0 {
		if lastErr == nil {
			return fmt.Errorf("%w: %d of %d", ErrFramesFailed, failed, a.config.Frames)
		}
		return fmt.Errorf("%w: %d of %d: %w", ErrFramesFailed, failed, a.config.Frames, lastErr)
	}
	return nil
}

func (a *App) logReport(r *frame.Report) {
	logger := a.logger.With("frame", r.Frame)
	if r.Success {
		logger.Info("Frame finished.", "elapsed", r.Elapsed, "order", r.DispatchOrder)
	} else {
		logger.Warn("Frame finished with failures.", "elapsed", r.Elapsed, "failed", r.Failed, "skipped", r.Skipped)
	}
	for _, name := range r.Failed {
		logger.Error("Stage failed.", "stage", name, "error", r.Errors[name])
	}
	for _, name := range r.DispatchOrder {
		logger.Debug("Stage duration.", "stage", name, "duration", r.Durations[name])
	}
}

func (a *App) shutdownPool(pool *workerpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := pool.Shutdown(ctx); err != nil {
		a.logger.Error("Worker pool did not drain in time.", "error", err)
	}
}
