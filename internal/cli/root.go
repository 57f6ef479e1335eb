// Package cli implements the cobra-based CLI commands for wincross.
//
// Each subcommand (init, configure, build, test, shell, doctor) is defined
// in its own file within this package. This file defines the root command
// that serves as the parent for all subcommands and handles global flags.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/model"
)

// Global flag variables shared across all subcommands. These are bound to
// cobra persistent flags on the root command, which makes them available
// to every subcommand automatically.
var (
	// flagRoot overrides project root detection (--root).
	flagRoot string

	// flagProjectConfig overrides the project config location
	// (--project-config).
	flagProjectConfig string

	// flagBuildConfig overrides the machine config location
	// (--build-config).
	flagBuildConfig string

	// verbose enables debug logging on stderr.
	verbose bool
)

// logger is the shared stderr logger. Subcommands use it for progress and
// debug output; stdout is reserved for command output (doctor --dump) and
// the container subprocess's own streams.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

// version, commit, and date are set at build time via ldflags. They are
// injected from the main package to display version information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command. This is
// the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wincross",
		Short: "Cross-build and test Windows binaries from Linux",
		Long: `wincross drives a containerized MSVC+Wine toolchain so that Windows
binaries can be configured, built and tested from a Linux host.

Configuration is resolved from four layers, highest precedence first:
command-line flags, WINCROSS_* environment variables, the machine config
(.wincross/build_config.json) and the project config (wincross.toml).`,

		// Errors are formatted by Execute, not by cobra.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "",
		"Project root (default: autodetect from the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagProjectConfig, "project-config", "",
		"Project config path (default: <root>/wincross.toml)")
	rootCmd.PersistentFlags().StringVar(&flagBuildConfig, "build-config", "",
		"Machine config path (default: <root>/.wincross/build_config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug output")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewConfigureCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewTestCommand())
	rootCmd.AddCommand(NewShellCommand())
	rootCmd.AddCommand(NewDoctorCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the main
// entry point called from main.go.
//
// CLIError values carry their own exit codes, including the container
// subprocess's exit status, which passes through untouched. Other errors
// map through the sentinel classification, so a config or mount failure
// exits with its reserved code even when no CLIError was constructed.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			if cliErr.Err != nil {
				logger.Error(cliErr.Message, "err", cliErr.Err)
			} else {
				logger.Error(cliErr.Message)
			}
			os.Exit(int(cliErr.Code))
		}

		logger.Error(err.Error())
		os.Exit(int(model.ExitCodeFor(err)))
	}
}
