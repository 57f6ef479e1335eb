// Package model defines the domain types for the wincross CLI.
//
// This package contains pure data structures with no external dependencies:
// the layered configuration values (project, machine, effective), toolchain
// mount declarations, override tuples, and the final ContainerInvocation
// consumed by the dispatcher. It also defines the error kinds raised during
// configuration resolution and the exit codes they map to.
//
// All values are loaded once per CLI invocation and passed explicitly
// through the pipeline; nothing in this package is ambient or mutable
// across invocations.
package model
