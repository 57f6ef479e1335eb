package config

import (
	"fmt"
	"path/filepath"

	"github.com/wincross-dev/wincross/internal/model"
	"github.com/wincross-dev/wincross/internal/mount"
	"github.com/wincross-dev/wincross/internal/placeholder"
)

// DefaultImage is used when neither config layer names a container image.
const DefaultImage = "ghcr.io/wincross-dev/msvc-wine:latest"

// defaultGenerator and defaultBuildType are the CMake fallbacks.
const (
	defaultGenerator = "Ninja"
	defaultBuildType = "Release"
)

// Override keys understood by Merge. The same precedence table applies to
// every key: command line > environment > machine config > project config.
const (
	KeyImage     = "image"
	KeyBuildDir  = "build_dir"
	KeyGenerator = "generator"
	KeyBuildType = "build_type"
	KeyProfile   = "profile"
)

// MergeInput gathers everything Merge needs: the two loaded config layers,
// the resolved root, the project config location (for the {config_dir}
// seed), and the overrides collected from flags and environment variables.
type MergeInput struct {
	Root              string
	ProjectConfigPath string
	Project           *ProjectConfig
	Machine           *MachineConfig

	// Overrides is the ordered (source, key, value) list. Two overrides
	// from the same source that disagree on a key are a MergeConflict.
	Overrides []model.Override

	// FlagToolchains are --toolchain declarations from the command line,
	// overriding both config layers by name.
	FlagToolchains []model.ToolchainMount

	// FlagMounts are --mount declarations from the command line, appended
	// after the machine config's extra mounts.
	FlagMounts []model.ToolchainMount
}

// Merge combines the project config, machine config and overrides into one
// EffectiveConfig, honoring the precedence table, planning the mount list,
// and strictly resolving every placeholder. Any error aborts the pipeline
// before a subprocess can start.
func Merge(in MergeInput) (*model.EffectiveConfig, error) {
	project := in.Project
	machine := in.Machine
	if project == nil {
		project = &ProjectConfig{}
	}
	if machine == nil {
		machine = &MachineConfig{}
	}

	// Profile selection happens first so that everything below sees the
	// profile-adjusted project config.
	profile, err := pick(in.Overrides, KeyProfile, machine.Profile, project.DefaultProfile)
	if err != nil {
		return nil, err
	}
	project, err = project.ApplyProfile(profile)
	if err != nil {
		return nil, err
	}

	image, err := pick(in.Overrides, KeyImage, machine.Image, project.Image)
	if err != nil {
		return nil, err
	}
	if image == "" {
		image = DefaultImage
	}
	generator, err := pick(in.Overrides, KeyGenerator, machine.Generator, project.CMake.Generator)
	if err != nil {
		return nil, err
	}
	if generator == "" {
		generator = defaultGenerator
	}
	buildType, err := pick(in.Overrides, KeyBuildType, machine.BuildType, project.CMake.BuildType)
	if err != nil {
		return nil, err
	}
	if buildType == "" {
		buildType = defaultBuildType
	}

	stateDir := machine.StateDir
	if stateDir == "" {
		stateDir = StateDir(in.Root)
	}

	// The build dir may itself carry placeholders ({state_dir}/build), so
	// it resolves against host-path seeds before anything else needs it.
	buildDirRaw, err := pick(in.Overrides, KeyBuildDir, machine.BuildDir, project.CMake.BuildDir)
	if err != nil {
		return nil, err
	}
	if buildDirRaw == "" {
		buildDirRaw = filepath.Join(stateDir, "build-windows")
	}
	hostSeeds := map[string]string{
		"project_root": in.Root,
		"state_dir":    stateDir,
	}
	buildDir, err := placeholder.ResolveStrict(buildDirRaw, hostSeeds)
	if err != nil {
		return nil, fmt.Errorf("build_dir: %w", err)
	}
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(in.Root, buildDir)
	}
	buildDir = filepath.Clean(buildDir)

	// Flag-level toolchain declarations must agree among themselves; the
	// same name with different host paths at the same precedence level is
	// a user error, reported, never silently resolved.
	if err := checkFlagToolchainConflicts(in.FlagToolchains); err != nil {
		return nil, err
	}

	machineToolchains := mount.MergeByName(machine.ToolchainMounts(), in.FlagToolchains)
	extraMounts := append(machine.ExtraMounts(), in.FlagMounts...)
	toolchains, extras, err := mount.Plan(project.ToolchainMounts(), machineToolchains, extraMounts)
	if err != nil {
		return nil, err
	}

	// Container-path seeds for everything that ends up inside the
	// container: env values, cmake defaults, PATH prepends.
	containerState, err := ToContainerPath(stateDir, in.Root)
	if err != nil {
		return nil, err
	}
	containerBuild, err := ToContainerPath(buildDir, in.Root)
	if err != nil {
		return nil, err
	}
	configDir, err := ToContainerPath(filepath.Dir(in.ProjectConfigPath), in.Root)
	if err != nil {
		return nil, err
	}
	seeds := map[string]string{
		"project_root": ContainerRoot,
		"state_dir":    containerState,
		"build_dir":    containerBuild,
		"config_dir":   configDir,
	}
	for _, tc := range toolchains {
		seeds["toolchain_"+tc.Name] = tc.ContainerPath
	}

	env, err := placeholder.ResolveMap(mergeStringMap(project.Env, machine.Env), seeds)
	if err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	cmakeDefaults, err := placeholder.ResolveSlice(
		appendList(project.CMake.Defaults, machine.CMakeDefaults), seeds)
	if err != nil {
		return nil, fmt.Errorf("cmake defaults: %w", err)
	}
	pathPrepend, err := placeholder.ResolveSlice(
		appendList(project.PathPrepend, machine.PathPrepend), seeds)
	if err != nil {
		return nil, fmt.Errorf("path_prepend: %w", err)
	}

	vcpkg, err := mergeVcpkg(project.Vcpkg, machine.Vcpkg, in.Root)
	if err != nil {
		return nil, err
	}

	return &model.EffectiveConfig{
		Image:         image,
		ProjectRoot:   in.Root,
		StateDir:      stateDir,
		BuildDir:      buildDir,
		ConfigDir:     configDir,
		Generator:     generator,
		BuildType:     buildType,
		Profile:       profile,
		Toolchains:    toolchains,
		Mounts:        extras,
		Env:           env,
		PathPrepend:   pathPrepend,
		CMakeDefaults: cmakeDefaults,
		Vcpkg:         vcpkg,
	}, nil
}

// pick resolves one scalar key through the precedence table. The machine
// and project values sit below the override list; within the overrides the
// highest source present wins, and two overrides at that source which
// disagree are a MergeConflict naming both.
func pick(overrides []model.Override, key, machineVal, projectVal string) (string, error) {
	var (
		bestSource model.OverrideSource
		bestValue  string
		found      bool
	)
	for _, o := range overrides {
		if o.Key != key {
			continue
		}
		switch {
		case !found, o.Source > bestSource:
			bestSource, bestValue, found = o.Source, o.Value, true
		case o.Source == bestSource && o.Value != bestValue:
			return "", fmt.Errorf("%w: %s set to both %q and %q by %s",
				model.ErrMergeConflict, key, bestValue, o.Value, o.Source)
		}
	}
	if found {
		return bestValue, nil
	}
	if machineVal != "" {
		return machineVal, nil
	}
	return projectVal, nil
}

// checkFlagToolchainConflicts rejects two --toolchain flags that declare
// the same name with different host paths or modes.
func checkFlagToolchainConflicts(flags []model.ToolchainMount) error {
	seen := make(map[string]model.ToolchainMount, len(flags))
	for _, tc := range flags {
		prev, ok := seen[tc.Name]
		if ok && prev.Spec() != tc.Spec() {
			return fmt.Errorf("%w: --toolchain %s declared as both %q and %q",
				model.ErrMergeConflict, tc.Name, prev.Spec(), tc.Spec())
		}
		seen[tc.Name] = tc
	}
	return nil
}

// mergeVcpkg combines the project's shared vcpkg settings with the
// machine's local paths. When enabled, the machine config must supply the
// host paths, and their container equivalents are derived for the env
// wiring in the command builder.
func mergeVcpkg(project ProjectVcpkg, machine MachineVcpkg, root string) (model.VcpkgConfig, error) {
	enabled := project.Enabled
	if machine.Enabled != nil {
		enabled = *machine.Enabled
	}

	cfg := model.VcpkgConfig{
		Enabled:         enabled,
		Triplet:         firstNonEmpty(machine.Triplet, project.Triplet, "x64-windows"),
		Packages:        project.Packages,
		HostRoot:        machine.HostRoot,
		HostBinaryCache: machine.HostBinaryCache,
	}
	if len(machine.Packages) > 0 {
		cfg.Packages = appendList(project.Packages, machine.Packages)
	}
	if !enabled {
		return cfg, nil
	}

	if cfg.HostRoot == "" || cfg.HostBinaryCache == "" {
		return model.VcpkgConfig{}, fmt.Errorf(
			"%w: vcpkg is enabled but host_root or host_binary_cache is missing from the machine config",
			model.ErrConfigParse)
	}
	var err error
	if cfg.ContainerRoot, err = ToContainerPath(cfg.HostRoot, root); err != nil {
		return model.VcpkgConfig{}, fmt.Errorf("vcpkg host_root: %w", err)
	}
	if cfg.ContainerBinaryCache, err = ToContainerPath(cfg.HostBinaryCache, root); err != nil {
		return model.VcpkgConfig{}, fmt.Errorf("vcpkg host_binary_cache: %w", err)
	}
	return cfg, nil
}
