// Package command composes the container invocation for each subcommand.
//
// Given the effective configuration, it derives the entrypoint argument
// vector (cmake, ctest or an interactive shell), splits user-supplied
// --*-args strings with POSIX shell-word rules, assembles the container
// environment (toolchain paths, wine/sccache state, vcpkg wiring, user
// env passed through verbatim) and fixes the working directory per
// subcommand convention.
//
// The package is pure: it never touches the container runtime and has no
// side effects, which keeps every derived argument independently testable.
package command
