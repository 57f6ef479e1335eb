// Package docker dispatches container invocations to the Docker CLI and
// checks daemon availability through the Docker Engine SDK.
//
// Builds and tests run as plain `docker run` subprocesses with inherited
// stdio, so compiler output streams through untouched and the container's
// exit status can be propagated verbatim. The interactive shell subcommand
// instead runs under a pseudo-terminal so line editing, job control and
// window resizing work inside the container.
//
// The SDK client is used only for daemon health checks (doctor); the
// actual container runs stay exec-based so the exact argv can be logged
// and reproduced by hand.
package docker
