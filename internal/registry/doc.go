// Package registry provides the central "glue" between stage files and Go
// code.
//
// The Registry maps the job kind named in a stage file (e.g. `job "sleep"`)
// to the compiled Go input struct and constructor implementing it. During
// startup the registry is populated by modules, validated, and then used to
// turn a loaded config.Model into stage declarations for the scheduler.
package registry
