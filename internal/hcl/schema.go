package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks from any file.
type fileRoot struct {
	Stages []*stageBlock `hcl:"stage,block"`
}

// stageBlock is the raw `stage "name" { ... }` block.
type stageBlock struct {
	Name   string         `hcl:"name,label"`
	Reads  hcl.Expression `hcl:"reads,optional"`
	Writes hcl.Expression `hcl:"writes,optional"`
	After  hcl.Expression `hcl:"after,optional"`
	Jobs   []*jobBlock    `hcl:"job,block"`
}

// jobBlock is the raw `job "kind" { ... }` block. Everything except the
// count meta-argument is left in Remain for the job kind to decode.
type jobBlock struct {
	Kind   string         `hcl:"kind,label"`
	Count  hcl.Expression `hcl:"count,optional"`
	Remain hcl.Body       `hcl:",remain"`
}
