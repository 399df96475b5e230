package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/frame"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // hcl file or directory

	WorkerCount   int
	Frames        int
	FailurePolicy string // "soft" or "skip"

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WorkerCount must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.Frames < 1 {
		return nil, fmt.Errorf("Frames must be at least 1, got %d", cfg.Frames)
	}
	if _, ok := frame.ParseFailurePolicy(cfg.FailurePolicy); !ok {
		return nil, fmt.Errorf("unknown FailurePolicy %q: must be 'soft' or 'skip'", cfg.FailurePolicy)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort out of range: %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
