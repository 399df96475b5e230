package yamlgrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	tghcl "github.com/specialistvlad/tickgrid/internal/hcl"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// IsYAML reports whether path names a YAML stage file.
func IsYAML(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load parses every YAML file under paths, in walk order. The returned
// converter is the HCL one, since arguments are held as HCL expressions.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := config.FindFiles(paths, IsYAML)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .yaml files found in %v", paths)
	}

	model := &config.Model{}
	for _, file := range files {
		stages, err := loadFile(ctx, file)
		if err != nil {
			return nil, nil, err
		}
		model.Stages = append(model.Stages, stages...)
	}

	logger.Debug("YAML loading complete.", "files", len(files), "stages", len(model.Stages))
	return model, tghcl.NewConverter(), nil
}

func loadFile(ctx context.Context, file string) ([]*config.Stage, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc fileDoc
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			ctxlog.FromContext(ctx).Warn("Empty YAML file.", "file", file)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", file, err)
	}

	stages := make([]*config.Stage, 0, len(doc.Stages))
	for _, sd := range doc.Stages {
		s, err := translateStage(file, sd)
		if err != nil {
			return nil, fmt.Errorf("stage '%s' in %s: %w", sd.Name, file, err)
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func translateStage(file string, sd stageDoc) (*config.Stage, error) {
	s := &config.Stage{
		Name:   sd.Name,
		Reads:  sd.Reads,
		Writes: sd.Writes,
		After:  sd.After,
		Source: fmt.Sprintf("%s:%d", file, sd.line),
	}
	for _, jd := range sd.Jobs {
		count := 1
		if jd.Count != nil {
			count = *jd.Count
		}
		if count < 0 {
			return nil, fmt.Errorf("job '%s': count must not be negative, got %d", jd.Kind, count)
		}

		args := make(map[string]hcl.Expression, len(jd.Args))
		for name, node := range jd.Args {
			expr, err := argExpr(file, &node)
			if err != nil {
				return nil, fmt.Errorf("job '%s': argument %q: %w", jd.Kind, name, err)
			}
			args[name] = expr
		}

		s.Jobs = append(s.Jobs, &config.Job{
			Kind:      jd.Kind,
			Count:     count,
			Arguments: args,
			Source:    fmt.Sprintf("%s:%d", file, jd.line),
		})
	}
	return s, nil
}
