package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/command"
	"github.com/wincross-dev/wincross/internal/config"
	"github.com/wincross-dev/wincross/internal/model"
)

// stateSubdirs are created under .wincross by init. They back the
// container-side HOME, Wine prefix and compiler cache, so the container
// never writes outside the bind-mounted project tree.
var stateSubdirs = []string{"build-windows", "sccache", "wine", "home", "logs"}

// initFlags holds the flag values for the init command beyond the shared
// override set.
type initFlags struct {
	force       bool     // --force: overwrite an existing machine config
	env         []string // --env: KEY=VALUE container environment entries
	pathPrepend []string // --path-prepend: container PATH prefix entries
	cmakeArgs   []string // --cmake-args: default configure arguments
}

// NewInitCommand creates the "init" cobra command: write the machine
// config and create the state directory layout.
func NewInitCommand() *cobra.Command {
	flags := &overrideFlags{}
	extra := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the machine config and state directories for this checkout",
		Long: `Initialize this checkout for containerized Windows builds: write the
machine-local config (.wincross/build_config.json) and create the state
directory layout (build, sccache, wine prefix, container home).

The machine config records host-specific truth — local toolchain paths,
caches, mounts — and is never committed; shared settings belong in
wincross.toml instead.

  wincross init --toolchain msvc=/opt/msvc:/opt/msvc:ro
  wincross init --image ghcr.io/example/msvc:latest --build-type Debug
  wincross init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags, extra)
		},
	}

	addOverrideFlags(cmd, flags)
	cmd.Flags().BoolVar(&extra.force, "force", false,
		"Overwrite an existing machine config")
	cmd.Flags().StringArrayVar(&extra.env, "env", nil,
		"Container environment entry, KEY=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&extra.pathPrepend, "path-prepend", nil,
		"Container PATH prefix entry (repeatable)")
	cmd.Flags().StringArrayVar(&extra.cmakeArgs, "cmake-args", nil,
		"Default cmake configure arguments, shell-word-split (repeatable)")

	return cmd
}

// runInit assembles the machine config from the init flags, writes it and
// creates the state directories. Full configuration validation (host path
// existence, placeholder resolution) is doctor's job; init only rejects
// declarations that cannot be parsed at all.
func runInit(flags *overrideFlags, extra *initFlags) error {
	root, err := config.ResolveRoot(flagRoot, flagProjectConfig)
	if err != nil {
		return model.WrapCLIError(model.ExitUsage, "cannot resolve project root", err)
	}

	toolchains, err := parseToolchainFlags(flags.toolchains, root)
	if err != nil {
		return err
	}
	mounts, err := parseMountFlags(flags.mounts, root)
	if err != nil {
		return err
	}
	env, err := parseEnvFlags(extra.env)
	if err != nil {
		return err
	}
	cmakeDefaults, err := command.SplitAll(extra.cmakeArgs)
	if err != nil {
		return err
	}

	machine := &config.MachineConfig{
		Image:         flags.image,
		ProjectRoot:   root,
		StateDir:      config.StateDir(root),
		BuildDir:      flags.buildDir,
		Generator:     flags.generator,
		BuildType:     flags.buildType,
		Profile:       flags.profile,
		Env:           env,
		PathPrepend:   extra.pathPrepend,
		CMakeDefaults: cmakeDefaults,
	}
	if len(toolchains) > 0 {
		machine.Toolchains = make(map[string]config.MachineToolchain, len(toolchains))
		for _, tc := range toolchains {
			machine.Toolchains[tc.Name] = config.MachineToolchain{
				HostPath:      tc.HostPath,
				ContainerPath: tc.ContainerPath,
				Mode:          string(tc.Mode),
			}
		}
	}
	for _, m := range mounts {
		machine.Mounts = append(machine.Mounts, config.MachineMount{
			HostPath:      m.HostPath,
			ContainerPath: m.ContainerPath,
			Mode:          string(m.Mode),
		})
	}

	path := config.MachineConfigPath(root, flagBuildConfig)
	if err := config.WriteMachine(path, machine, extra.force); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "cannot write machine config", err)
	}
	logger.Info("wrote machine config", "path", path)

	stateDir := config.StateDir(root)
	for _, sub := range stateSubdirs {
		dir := filepath.Join(stateDir, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("cannot create state directory %s", dir), err)
		}
	}
	logger.Info("created state directories", "state_dir", stateDir)
	logger.Info("run `wincross doctor` to validate the configuration")
	return nil
}

// parseEnvFlags parses repeatable --env KEY=VALUE declarations.
func parseEnvFlags(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --env %q (expected KEY=VALUE)", model.ErrArgsParse, entry)
		}
		env[key] = value
	}
	return env, nil
}
