package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/frame"
	"github.com/specialistvlad/tickgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger    *slog.Logger
	config    *Config
	runID     string
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter

	mu   sync.Mutex
	last *frame.Report
}

// NewApp is the constructor for the main application. It loads the grid,
// registers the job kinds and validates them. When no modules are given the
// core modules are used.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.GridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "stages", len(model.Stages))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", reg.Kinds())

	if err := reg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("registry validation failed: %w", err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		logger:    logger,
		config:    cfg,
		runID:     runID,
		registry:  reg,
		model:     model,
		converter: converter,
	}, nil
}

// RunID returns the identifier attached to every log line of this App.
func (a *App) RunID() string {
	return a.runID
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// LastReport returns the report of the most recently finished frame, or nil.
func (a *App) LastReport() *frame.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *App) setLastReport(r *frame.Report) {
	a.mu.Lock()
	a.last = r
	a.mu.Unlock()
}
