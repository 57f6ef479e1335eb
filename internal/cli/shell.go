package cli

import (
	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/command"
)

// NewShellCommand creates the "shell" cobra command: an interactive shell
// inside the toolchain container.
func NewShellCommand() *cobra.Command {
	flags := &overrideFlags{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell inside the toolchain container",
		Long: `Start an interactive bash session inside the toolchain container with
the project mounted at the container root and the full build environment
(toolchain PATH, Wine prefix, sccache, vcpkg) in place.

The session runs on a pseudo-terminal, so line editing, job control and
window resizing work as usual. When stdin is not a terminal the shell
runs without one, which keeps piped usage working:

  echo 'cl /help' | wincross shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), command.SubShell, flags, nil)
		},
	}

	addOverrideFlags(cmd, flags)
	return cmd
}
