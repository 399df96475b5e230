// Package hcl provides the concrete HCL implementation for the configuration
// loading and data conversion interfaces defined in the `config` package.
// It is responsible for file discovery, parsing stage blocks into the
// format-agnostic model, and binding job arguments to Go input structs.
//
// A stage file looks like:
//
//	stage "prepare" {
//	  reads  = ["RenderData"]
//	  writes = ["DrawList"]
//	  after  = [stage.extract]
//
//	  job "sleep" {
//	    count    = 4
//	    duration = "2ms"
//	    label    = "prepare-${count.index}"
//	  }
//	}
package hcl
