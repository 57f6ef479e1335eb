// Package main is the entry point for the wincross CLI.
//
// The binary drives a containerized MSVC+Wine toolchain for cross-building
// and testing Windows binaries from a Linux host. All functionality lives
// in the internal/cli package, which defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/wincross-dev/wincross/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
