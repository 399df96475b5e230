// Package yamlgrid loads stage files written in YAML into the format-agnostic
// config model. String arguments are parsed as HCL templates, so
// `${count.index}` and `${env.NAME}` work the same way they do in .hcl files.
package yamlgrid
