// Package resource models the shared state that stages touch and answers the
// only question the scheduler asks about it: do two stages conflict?
//
// A conflict exists when both stages write a common resource, or when one
// writes a resource the other reads. Two readers never conflict. The table is
// built once from static declarations and is read-only afterwards.
package resource
