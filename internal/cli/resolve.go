package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wincross-dev/wincross/internal/config"
	"github.com/wincross-dev/wincross/internal/model"
	"github.com/wincross-dev/wincross/internal/mount"
)

// overrideFlags holds the configuration override flags shared by every
// subcommand that resolves an effective configuration.
type overrideFlags struct {
	image      string   // --image: container image reference
	buildDir   string   // --build-dir: CMake build directory
	generator  string   // --generator: CMake generator
	buildType  string   // --build-type: CMake build type
	profile    string   // --profile: project profile name
	toolchains []string // --toolchain: name=hostpath[:containerpath[:mode]]
	mounts     []string // --mount: hostpath:containerpath[:mode]
}

// addOverrideFlags registers the shared override flags on a subcommand.
func addOverrideFlags(cmd *cobra.Command, flags *overrideFlags) {
	cmd.Flags().StringVar(&flags.image, "image", "", "Container image reference")
	cmd.Flags().StringVar(&flags.buildDir, "build-dir", "", "CMake build directory (host path, may use placeholders)")
	cmd.Flags().StringVar(&flags.generator, "generator", "", "CMake generator")
	cmd.Flags().StringVar(&flags.buildType, "build-type", "", "CMake build type")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "Project profile to apply")
	cmd.Flags().StringArrayVar(&flags.toolchains, "toolchain", nil,
		"Toolchain mount, name=hostpath[:containerpath[:ro|rw]] (repeatable)")
	cmd.Flags().StringArrayVar(&flags.mounts, "mount", nil,
		"Extra bind mount, hostpath:containerpath[:ro|rw] (repeatable)")
}

// envOverrideKeys maps WINCROSS_* environment variables to merge keys.
// They sit between CLI flags and the machine config in precedence.
var envOverrideKeys = map[string]string{
	"WINCROSS_IMAGE":      config.KeyImage,
	"WINCROSS_BUILD_DIR":  config.KeyBuildDir,
	"WINCROSS_GENERATOR":  config.KeyGenerator,
	"WINCROSS_BUILD_TYPE": config.KeyBuildType,
	"WINCROSS_PROFILE":    config.KeyProfile,
}

// collectOverrides turns the flag values and WINCROSS_* environment
// variables into the ordered override list the merger consumes.
func collectOverrides(flags *overrideFlags) []model.Override {
	var overrides []model.Override
	add := func(source model.OverrideSource, key, value string) {
		if value != "" {
			overrides = append(overrides, model.Override{Source: source, Key: key, Value: value})
		}
	}

	for env, key := range envOverrideKeys {
		add(model.SourceEnv, key, os.Getenv(env))
	}

	add(model.SourceFlag, config.KeyImage, flags.image)
	add(model.SourceFlag, config.KeyBuildDir, flags.buildDir)
	add(model.SourceFlag, config.KeyGenerator, flags.generator)
	add(model.SourceFlag, config.KeyBuildType, flags.buildType)
	add(model.SourceFlag, config.KeyProfile, flags.profile)
	return overrides
}

// resolveEffective runs the full configuration pipeline: root detection,
// loading both config layers, parsing flag-level mount declarations, and
// the precedence merge. Every subcommand that talks to the container goes
// through here, so any configuration error aborts before a subprocess can
// start.
func resolveEffective(flags *overrideFlags) (*model.EffectiveConfig, error) {
	root, err := config.ResolveRoot(flagRoot, flagProjectConfig)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitUsage, "cannot resolve project root", err)
	}
	logger.Debug("resolved project root", "root", root)

	projectPath := config.ProjectConfigPath(root, flagProjectConfig)
	project, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, err
	}

	machinePath := config.MachineConfigPath(root, flagBuildConfig)
	machine, err := config.LoadMachine(machinePath)
	if err != nil {
		return nil, err
	}

	flagToolchains, err := parseToolchainFlags(flags.toolchains, root)
	if err != nil {
		return nil, err
	}
	flagMounts, err := parseMountFlags(flags.mounts, root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Merge(config.MergeInput{
		Root:              root,
		ProjectConfigPath: projectPath,
		Project:           project,
		Machine:           machine,
		Overrides:         collectOverrides(flags),
		FlagToolchains:    flagToolchains,
		FlagMounts:        flagMounts,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("effective configuration",
		"image", cfg.Image, "build_dir", cfg.BuildDir, "profile", cfg.Profile)
	return cfg, nil
}

// parseToolchainFlags parses repeatable --toolchain declarations.
func parseToolchainFlags(specs []string, root string) ([]model.ToolchainMount, error) {
	var mounts []model.ToolchainMount
	for _, spec := range specs {
		mnt, err := mount.ParseToolchainSpec(spec, root)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, mnt)
	}
	return mounts, nil
}

// parseMountFlags parses repeatable --mount declarations.
func parseMountFlags(specs []string, root string) ([]model.ToolchainMount, error) {
	var mounts []model.ToolchainMount
	for _, spec := range specs {
		mnt, err := mount.ParseMountSpec(spec, root)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, mnt)
	}
	return mounts, nil
}

// joinArgs flattens a repeatable --*-args flag into one string for
// shell-word splitting. Each value is independently quoted, so joining
// with a space preserves the word boundaries.
func joinArgs(values []string) string {
	return strings.Join(values, " ")
}
