// Package config defines the format-agnostic model of a stage file, along
// with the interfaces (Loader, Converter) for loading and interpreting it.
//
// The `config.Model` is what the registry turns into stage declarations.
// Concrete implementations of the interfaces, such as for HCL, are provided
// in separate packages.
package config
