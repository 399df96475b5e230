package resource

import (
	"fmt"
	"sort"
	"sync"
)

// Violation records an access a job performed outside its stage's declaration.
type Violation struct {
	Stage    string
	Resource ID
	Kind     Kind
}

func (v Violation) String() string {
	return fmt.Sprintf("stage %q performed undeclared %s of %q", v.Stage, v.Kind, v.Resource)
}

// Auditor verifies the caller-side contract that job bodies only touch the
// resources their stage declared. Jobs report each access via Touch; the
// scheduler itself never consults the auditor. It is safe for concurrent use.
type Auditor struct {
	mu         sync.Mutex
	declared   map[string]Access
	violations []Violation
	touched    map[string]map[ID]Kind
}

// NewAuditor creates an auditor for the given stage declarations, keyed by stage name.
func NewAuditor(declared map[string]Access) *Auditor {
	d := make(map[string]Access, len(declared))
	for name, a := range declared {
		d[name] = a
	}
	return &Auditor{
		declared: d,
		touched:  make(map[string]map[ID]Kind),
	}
}

// Touch records that a job of stage touched id with kind k. It returns false
// when the access was not declared.
func (a *Auditor) Touch(stage string, id ID, k Kind) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.touched[stage] == nil {
		a.touched[stage] = make(map[ID]Kind)
	}
	if prev, ok := a.touched[stage][id]; !ok || k > prev {
		a.touched[stage][id] = k
	}

	access, known := a.declared[stage]
	if known && access.Allows(id, k) {
		return true
	}
	a.violations = append(a.violations, Violation{Stage: stage, Resource: id, Kind: k})
	return false
}

// Violations returns the recorded violations ordered by stage, resource and kind.
func (a *Auditor) Violations() []Violation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Violation, len(a.violations))
	copy(out, a.violations)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Touched returns the strongest access kind observed per resource for stage.
func (a *Auditor) Touched(stage string) map[ID]Kind {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[ID]Kind, len(a.touched[stage]))
	for id, k := range a.touched[stage] {
		out[id] = k
	}
	return out
}
