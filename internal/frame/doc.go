// Package frame coordinates the execution of one frame of a stage schedule.
//
// A Schedule is built once from ordered stage declarations and reused for
// every frame. RunFrame releases stages in dependency order onto a worker
// pool, waits on a completion channel until every stage has reached a
// terminal state, and returns a Report describing the frame.
//
// The coordinating goroutine is the caller of RunFrame. It owns all
// readiness bookkeeping; worker goroutines only run jobs and signal the last
// job of each stage finishing.
package frame
