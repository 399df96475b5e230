// Package scheduler tracks stage readiness within one frame.
//
// # How It Works
//
// A Tracker holds, for every stage of a plan, the number of predecessors that
// have not finished yet. Stages at zero are ready. When the frame coordinator
// reports a stage complete, the tracker decrements each successor and hands
// back the ones that just reached zero.
//
// The tracker never decides how a stage runs and never looks at resources;
// those were resolved into edges when the plan was built.
//
// # Ordering
//
// Ready returns and Complete yields stages in ascending declaration order.
// With a single worker this makes a frame's dispatch order fully reproducible.
//
// # Thread-Safety
//
// A Tracker is owned by the single goroutine coordinating a frame and is not
// safe for concurrent use.
package scheduler
