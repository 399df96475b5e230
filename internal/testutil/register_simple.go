package testutil

import "github.com/specialistvlad/tickgrid/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single job kind.
type SimpleModule struct {
	Kind    string
	JobKind *registry.JobKind
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Kind != "" && m.JobKind != nil {
		r.Register(m.Kind, m.JobKind)
	}
}
