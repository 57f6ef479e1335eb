package cli

import (
	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/command"
)

// NewConfigureCommand creates the "configure" cobra command: run the CMake
// configure step inside the toolchain container.
func NewConfigureCommand() *cobra.Command {
	flags := &overrideFlags{}
	var cmakeArgs []string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Run the CMake configure step inside the toolchain container",
		Long: `Configure the project with CMake inside the toolchain container.

The source directory is the project root and the build directory comes
from the resolved configuration. Extra arguments are shell-word-split and
appended after the derived ones, so they can override any computed flag:

  wincross configure
  wincross configure --cmake-args "-DCMAKE_CXX_STANDARD=20"
  wincross configure --build-type Debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), command.SubConfigure, flags, cmakeArgs)
		},
	}

	addOverrideFlags(cmd, flags)
	cmd.Flags().StringArrayVar(&cmakeArgs, "cmake-args", nil,
		"Extra cmake arguments, shell-word-split (repeatable)")

	return cmd
}
