package model

import (
	"fmt"
	"strings"
)

// MountMode is the read/write mode of a bind mount. Only the two literals
// understood by the container runtime are valid.
type MountMode string

const (
	// ModeReadOnly mounts the host path read-only inside the container.
	ModeReadOnly MountMode = "ro"

	// ModeReadWrite mounts the host path writable inside the container.
	ModeReadWrite MountMode = "rw"
)

// String returns the string representation of MountMode.
func (m MountMode) String() string {
	return string(m)
}

// IsValid checks whether the MountMode is one of the two recognized literals.
func (m MountMode) IsValid() bool {
	return m == ModeReadOnly || m == ModeReadWrite
}

// ParseMountMode converts a string to a MountMode. The empty string defaults
// to "ro", matching the toolchain spec grammar where the mode is optional.
func ParseMountMode(s string) (MountMode, error) {
	if s == "" {
		return ModeReadOnly, nil
	}
	mode := MountMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: invalid mount mode %q (valid: ro, rw)", ErrInvalidMountSpec, s)
	}
	return mode, nil
}

// ToolchainMount is a single declared bind mount exposing compiler or SDK
// files to the build container. Toolchain mounts carry a name so that
// machine-config entries can override project-config entries; plain extra
// mounts from the machine config have an empty Name.
type ToolchainMount struct {
	// Name identifies the toolchain ("msvc", "winsdk", ...). Empty for
	// anonymous extra mounts.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// HostPath is the absolute path on the host. It must exist at
	// resolution time.
	HostPath string `json:"host_path" yaml:"host_path"`

	// ContainerPath is the absolute mount point inside the container.
	ContainerPath string `json:"container_path" yaml:"container_path"`

	// Mode is the bind-mount mode, ro or rw.
	Mode MountMode `json:"mode" yaml:"mode"`
}

// Spec serializes the mount back to its declaration form,
// name=hostpath:containerpath:mode (the name= prefix is omitted for
// anonymous mounts). Parsing a spec and serializing it again yields the
// original string, except that an omitted mode comes back as "ro".
func (t ToolchainMount) Spec() string {
	spec := fmt.Sprintf("%s:%s:%s", t.HostPath, t.ContainerPath, t.Mode)
	if t.Name == "" {
		return spec
	}
	return t.Name + "=" + spec
}

// VolumeFlag renders the mount as a docker -v argument value.
func (t ToolchainMount) VolumeFlag() string {
	return fmt.Sprintf("%s:%s:%s", t.HostPath, t.ContainerPath, t.Mode)
}

// OverrideSource identifies the configuration layer an override came from.
// Higher precedence wins on key collision.
type OverrideSource int

const (
	// SourceProject is the project config (wincross.toml), the lowest layer.
	SourceProject OverrideSource = iota

	// SourceMachine is the machine config (.wincross/build_config.json).
	SourceMachine

	// SourceEnv is a WINCROSS_* environment variable.
	SourceEnv

	// SourceFlag is an explicit CLI flag, the highest layer.
	SourceFlag
)

// String returns a human-readable layer name, used when reporting
// merge conflicts.
func (s OverrideSource) String() string {
	switch s {
	case SourceProject:
		return "project config"
	case SourceMachine:
		return "machine config"
	case SourceEnv:
		return "environment"
	case SourceFlag:
		return "command line"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Override is one (source, key, value) tuple collected from CLI flags or
// environment variables. Overrides are applied last, in order, and two
// overrides from the same source that disagree on the same key are a
// MergeConflict rather than last-one-wins.
type Override struct {
	Source OverrideSource
	Key    string
	Value  string
}

// VcpkgConfig holds vcpkg integration settings. Enablement, triplet and
// package list may come from either config layer; host paths are
// machine-local and only ever come from the machine config.
type VcpkgConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Triplet         string   `json:"triplet,omitempty" yaml:"triplet,omitempty" toml:"triplet,omitempty"`
	Packages        []string `json:"packages,omitempty" yaml:"packages,omitempty" toml:"packages,omitempty"`
	HostRoot        string   `json:"host_root,omitempty" yaml:"host_root,omitempty" toml:"-"`
	HostBinaryCache string   `json:"host_binary_cache,omitempty" yaml:"host_binary_cache,omitempty" toml:"-"`

	// Container paths are derived from the host paths during merge; they
	// are never read from a config file.
	ContainerRoot        string `json:"-" yaml:"container_root,omitempty" toml:"-"`
	ContainerBinaryCache string `json:"-" yaml:"container_binary_cache,omitempty" toml:"-"`
}

// EffectiveConfig is the fully merged, fully placeholder-resolved
// configuration used to build one container invocation. Invariant: no
// unresolved {...} tokens remain in any field after merge.
type EffectiveConfig struct {
	// Image is the container image reference.
	Image string `yaml:"image"`

	// ProjectRoot is the host path of the project root, mounted at
	// ContainerRoot inside the container.
	ProjectRoot string `yaml:"project_root"`

	// StateDir is the host path of the .wincross state directory.
	StateDir string `yaml:"state_dir"`

	// BuildDir is the host path of the CMake build directory.
	BuildDir string `yaml:"build_dir"`

	// ConfigDir is the container path of the directory holding the
	// project config, used as the {config_dir} placeholder seed.
	ConfigDir string `yaml:"config_dir"`

	// Generator and BuildType are the CMake defaults.
	Generator string `yaml:"generator"`
	BuildType string `yaml:"build_type"`

	// Profile is the active project profile name, empty when none.
	Profile string `yaml:"profile,omitempty"`

	// Toolchains is the planned, deterministically ordered mount list:
	// project declarations first, machine-only declarations appended,
	// machine overrides replacing project entries in place.
	Toolchains []ToolchainMount `yaml:"toolchains,omitempty"`

	// Mounts are anonymous extra bind mounts from the machine config,
	// appended after the toolchain mounts.
	Mounts []ToolchainMount `yaml:"mounts,omitempty"`

	// Env is passed through to the container verbatim, no filtering.
	Env map[string]string `yaml:"env,omitempty"`

	// PathPrepend entries are prefixed to the container PATH in order.
	PathPrepend []string `yaml:"path_prepend,omitempty"`

	// CMakeDefaults are arguments appended to every configure invocation.
	CMakeDefaults []string `yaml:"cmake_defaults,omitempty"`

	Vcpkg VcpkgConfig `yaml:"vcpkg"`
}

// ContainerInvocation is the final built command: everything needed to run
// one container subprocess. It is produced once per CLI invocation and
// consumed immediately by the dispatcher, never persisted.
type ContainerInvocation struct {
	// Image is the container image reference.
	Image string

	// Mounts is the ordered bind-mount list, project root mount first.
	Mounts []ToolchainMount

	// Env is the complete container environment map.
	Env map[string]string

	// WorkDir is the working directory inside the container.
	WorkDir string

	// Args is the entrypoint argument vector run inside the container.
	Args []string

	// Interactive requests a TTY and attached stdin (shell subcommand).
	Interactive bool
}
