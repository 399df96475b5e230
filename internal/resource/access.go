package resource

import (
	"slices"
	"strings"
)

// ID is an opaque token naming a shared entity. IDs are compared by identity.
type ID string

// Kind is the way a stage touches a resource.
type Kind int

const (
	// Read grants shared access.
	Read Kind = iota
	// Write grants exclusive access.
	Write
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// Set is an unordered collection of resource IDs.
type Set map[ID]struct{}

// NewSet builds a Set from the given IDs, dropping duplicates.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member of the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// String renders the set as "{a, b}" in sorted order.
func (s Set) String() string {
	ids := s.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Access is the declared read and write sets of a single stage.
type Access struct {
	Reads  Set
	Writes Set
}

// NewAccess is a convenience constructor taking plain ID slices.
func NewAccess(reads, writes []ID) Access {
	return Access{Reads: NewSet(reads...), Writes: NewSet(writes...)}
}

// Allows reports whether a stage with this access may touch id with kind k.
// Writing implies reading.
func (a Access) Allows(id ID, k Kind) bool {
	if a.Writes.Has(id) {
		return true
	}
	return k == Read && a.Reads.Has(id)
}

// IsEmpty reports whether the stage declares no resources at all.
func (a Access) IsEmpty() bool {
	return len(a.Reads) == 0 && len(a.Writes) == 0
}

// Conflicts reports whether two access declarations conflict.
func (a Access) Conflicts(b Access) bool {
	return len(a.shared(b)) > 0
}

// shared collects the resources that make a and b conflict.
func (a Access) shared(b Access) Set {
	out := Set{}
	for id := range a.Writes {
		if b.Writes.Has(id) || b.Reads.Has(id) {
			out[id] = struct{}{}
		}
	}
	for id := range b.Writes {
		if a.Reads.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}
