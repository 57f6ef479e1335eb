package cli

import (
	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/command"
)

// NewBuildCommand creates the "build" cobra command: run cmake --build
// inside the toolchain container.
func NewBuildCommand() *cobra.Command {
	flags := &overrideFlags{}
	var buildArgs []string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project inside the toolchain container",
		Long: `Run cmake --build in the resolved build directory inside the toolchain
container. The build is parallel unless the extra arguments carry their
own job control:

  wincross build
  wincross build --build-args "--target demo"
  wincross build --build-args "-j4"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), command.SubBuild, flags, buildArgs)
		},
	}

	addOverrideFlags(cmd, flags)
	cmd.Flags().StringArrayVar(&buildArgs, "build-args", nil,
		"Extra cmake --build arguments, shell-word-split (repeatable)")

	return cmd
}
