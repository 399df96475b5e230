// Package plan is the dependency graph builder. It turns an ordered list of
// stage declarations into an immutable execution plan: a directed acyclic
// graph over stages that merges explicit ordering ("after") with implicit
// ordering derived from resource conflicts.
//
// Build runs in four passes:
//
//  1. Validate names and explicit predecessor references.
//  2. Link explicit edges, predecessor -> stage.
//  3. Link implicit edges: for every conflicting pair not already ordered by a
//     path, the earlier-declared stage runs first.
//  4. Reject cycles, reporting the stage names that form one.
//
// Implicit edges are only added between stages with no connecting path, so
// they can never close a cycle; any cycle is made of explicit edges only.
package plan
