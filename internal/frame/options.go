package frame

// FailurePolicy decides what happens to the dependents of a failed stage.
type FailurePolicy int

const (
	// FailSoft records failures and still runs every dependent.
	FailSoft FailurePolicy = iota
	// SkipDependents marks every transitive dependent of a failed stage as
	// skipped; skipped stages are never dispatched.
	SkipDependents
)

func (p FailurePolicy) String() string {
	switch p {
	case FailSoft:
		return "soft"
	case SkipDependents:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy maps "soft" and "skip" to their policies.
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch s {
	case "soft", "":
		return FailSoft, true
	case "skip":
		return SkipDependents, true
	default:
		return FailSoft, false
	}
}

// Option configures a Schedule.
type Option func(*Schedule)

// WithFailurePolicy sets how failures propagate to dependents.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Schedule) { s.policy = p }
}
