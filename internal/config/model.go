package config

import "github.com/hashicorp/hcl/v2"

// Model is the unified representation of every stage loaded from the grid
// files, in declaration order.
type Model struct {
	Stages []*Stage
}

// Stage is the format-agnostic representation of a `stage` block.
type Stage struct {
	Name   string
	Reads  []string
	Writes []string
	After  []string
	Jobs   []*Job
	// Source is the file position of the declaration, for error messages.
	Source string
}

// Job is one `job` block inside a stage. Count copies of it are created,
// each decoded with its own index.
type Job struct {
	Kind      string
	Count     int
	Arguments map[string]hcl.Expression
	Source    string
}

// StageNames returns the stage names in declaration order.
func (m *Model) StageNames() []string {
	out := make([]string, len(m.Stages))
	for i, s := range m.Stages {
		out[i] = s.Name
	}
	return out
}
