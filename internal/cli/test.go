package cli

import (
	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/command"
)

// NewTestCommand creates the "test" cobra command: run ctest under Wine
// inside the toolchain container.
func NewTestCommand() *cobra.Command {
	flags := &overrideFlags{}
	var (
		ctestArgs []string
		testDir   string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the test suite under Wine inside the toolchain container",
		Long: `Run ctest in the resolved build directory inside the toolchain
container; the Windows test binaries execute under Wine:

  wincross test
  wincross test --ctest-args "-R smoke"
  wincross test --test-dir .wincross/build-debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// --test-dir selects the build directory ctest runs from, the
			// same slot --build-dir fills for the other subcommands.
			if testDir != "" {
				flags.buildDir = testDir
			}
			return dispatch(cmd.Context(), command.SubTest, flags, ctestArgs)
		},
	}

	addOverrideFlags(cmd, flags)
	cmd.Flags().StringArrayVar(&ctestArgs, "ctest-args", nil,
		"Extra ctest arguments, shell-word-split (repeatable)")
	cmd.Flags().StringVar(&testDir, "test-dir", "",
		"Build directory to run ctest from (default: the resolved build dir)")

	return cmd
}
