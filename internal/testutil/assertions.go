package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertFinishedBefore checks that every execution of first ended no later
// than the earliest start of second.
func AssertFinishedBefore(t *testing.T, r *Recorder, first, second string) {
	t.Helper()

	a, ok := r.Window(first)
	require.True(t, ok, "%q never ran", first)
	b, ok := r.Window(second)
	require.True(t, ok, "%q never ran", second)

	require.False(t, b.Start.Before(a.End),
		"%q started at %v before %q finished at %v", second, b.Start, first, a.End)
}

// AssertOverlapped checks that the windows of two labels intersect.
func AssertOverlapped(t *testing.T, r *Recorder, x, y string) {
	t.Helper()

	a, ok := r.Window(x)
	require.True(t, ok, "%q never ran", x)
	b, ok := r.Window(y)
	require.True(t, ok, "%q never ran", y)

	require.True(t, Overlaps(a, b), "%q [%v, %v] and %q [%v, %v] did not overlap",
		x, a.Start, a.End, y, b.Start, b.End)
}
