package plan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyStageName     = errors.New("empty stage name")
	ErrDuplicateStageName = errors.New("duplicate stage name")
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	ErrSelfDependency     = errors.New("self dependency")
	ErrCyclicDependency   = errors.New("cyclic dependency")
)

// Error is a structural problem found while building a plan. Kind is one of
// the sentinel errors above, so callers match with errors.Is.
type Error struct {
	Kind error
	// Stage is the offending stage, when there is one.
	Stage string
	// Predecessor is the unresolved name for ErrUnknownPredecessor.
	Predecessor string
	// Cycle lists the stages forming a cycle, with the first name repeated
	// at the end, for ErrCyclicDependency.
	Cycle []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case errors.Is(e.Kind, ErrUnknownPredecessor):
		return fmt.Sprintf("%s: stage %q runs after undeclared stage %q", e.Kind, e.Stage, e.Predecessor)
	case errors.Is(e.Kind, ErrCyclicDependency):
		return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Cycle, " -> "))
	case e.Stage != "":
		return fmt.Sprintf("%s: %q", e.Kind, e.Stage)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func duplicateName(name string) error {
	return &Error{Kind: ErrDuplicateStageName, Stage: name}
}

func unknownPredecessor(name, pred string) error {
	return &Error{Kind: ErrUnknownPredecessor, Stage: name, Predecessor: pred}
}

func selfDependency(name string) error {
	return &Error{Kind: ErrSelfDependency, Stage: name}
}

func cyclicDependency(cycle []string) error {
	return &Error{Kind: ErrCyclicDependency, Cycle: cycle}
}
