package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wincross-dev/wincross/internal/model"
)

// mergeFixture builds a MergeInput rooted in a temp dir with a real state
// directory so mount validation can stat host paths.
func mergeFixture(t *testing.T) MergeInput {
	t.Helper()
	root := t.TempDir()
	return MergeInput{
		Root:              root,
		ProjectConfigPath: filepath.Join(root, ProjectConfigFilename),
		Project:           &ProjectConfig{},
		Machine:           &MachineConfig{},
	}
}

// TestMerge_Defaults verifies the fallbacks when both layers are empty.
func TestMerge_Defaults(t *testing.T) {
	in := mergeFixture(t)

	eff, err := Merge(in)
	require.NoError(t, err)

	assert.Equal(t, DefaultImage, eff.Image)
	assert.Equal(t, "Ninja", eff.Generator)
	assert.Equal(t, "Release", eff.BuildType)
	assert.Equal(t, StateDir(in.Root), eff.StateDir)
	assert.Equal(t, filepath.Join(StateDir(in.Root), "build-windows"), eff.BuildDir)
	assert.Equal(t, ContainerRoot, eff.ConfigDir)
}

// TestMerge_BuildDirPlaceholder verifies the documented property: a
// project build_dir of {state_dir}/build resolves against the host state
// dir.
func TestMerge_BuildDirPlaceholder(t *testing.T) {
	in := mergeFixture(t)
	in.Project.CMake.BuildDir = "{state_dir}/build"

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(in.Root, ".wincross", "build"), eff.BuildDir)
}

// TestMerge_PrecedenceFlagOverEnv verifies CLI > env on the same key.
func TestMerge_PrecedenceFlagOverEnv(t *testing.T) {
	in := mergeFixture(t)
	in.Machine.BuildType = "Debug"
	in.Overrides = []model.Override{
		{Source: model.SourceEnv, Key: KeyBuildType, Value: "MinSizeRel"},
		{Source: model.SourceFlag, Key: KeyBuildType, Value: "RelWithDebInfo"},
	}

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, "RelWithDebInfo", eff.BuildType)
}

// TestMerge_PrecedenceEnvOverMachine verifies env > machine > project.
func TestMerge_PrecedenceEnvOverMachine(t *testing.T) {
	in := mergeFixture(t)
	in.Project.Image = "project-image"
	in.Machine.Image = "machine-image"

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, "machine-image", eff.Image)

	in.Overrides = []model.Override{{Source: model.SourceEnv, Key: KeyImage, Value: "env-image"}}
	eff, err = Merge(in)
	require.NoError(t, err)
	assert.Equal(t, "env-image", eff.Image)
}

// TestMerge_SameLevelConflict verifies that two overrides from the same
// source disagreeing on a key fail with MergeConflict naming the values.
func TestMerge_SameLevelConflict(t *testing.T) {
	in := mergeFixture(t)
	in.Overrides = []model.Override{
		{Source: model.SourceFlag, Key: KeyImage, Value: "a"},
		{Source: model.SourceFlag, Key: KeyImage, Value: "b"},
	}

	_, err := Merge(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMergeConflict)
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), `"b"`)
}

// TestMerge_ToolchainMachineOverridesProject verifies the by-name mount
// override through the full merge: same name, machine host path and mode
// win.
func TestMerge_ToolchainMachineOverridesProject(t *testing.T) {
	in := mergeFixture(t)
	hostA, hostB := t.TempDir(), t.TempDir()
	in.Project.Toolchains = map[string]ProjectToolchain{
		"tool": {HostPath: hostA, ContainerPath: "/opt/tool", Mode: "ro"},
	}
	in.Machine.Toolchains = map[string]MachineToolchain{
		"tool": {HostPath: hostB, Mode: "rw"},
	}

	eff, err := Merge(in)
	require.NoError(t, err)
	require.Len(t, eff.Toolchains, 1)
	assert.Equal(t, hostB, eff.Toolchains[0].HostPath)
	assert.Equal(t, "/opt/tool", eff.Toolchains[0].ContainerPath)
	assert.Equal(t, model.ModeReadWrite, eff.Toolchains[0].Mode)
}

// TestMerge_FlagToolchainConflict verifies that two --toolchain flags for
// the same name with different host paths are a MergeConflict.
func TestMerge_FlagToolchainConflict(t *testing.T) {
	in := mergeFixture(t)
	in.FlagToolchains = []model.ToolchainMount{
		{Name: "msvc", HostPath: "/a", ContainerPath: "/opt/msvc", Mode: model.ModeReadOnly},
		{Name: "msvc", HostPath: "/b", ContainerPath: "/opt/msvc", Mode: model.ModeReadOnly},
	}

	_, err := Merge(in)
	assert.ErrorIs(t, err, model.ErrMergeConflict)
}

// TestMerge_EnvPlaceholdersResolve verifies that env values resolve
// against container-path seeds and that no {...} tokens survive.
func TestMerge_EnvPlaceholdersResolve(t *testing.T) {
	in := mergeFixture(t)
	in.Project.Env = map[string]string{"SCCACHE_DIR": "{state_dir}/sccache"}

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, ContainerRoot+"/.wincross/sccache", eff.Env["SCCACHE_DIR"])
}

// TestMerge_UnknownPlaceholderFatal verifies that a typo'd placeholder in
// a merged value fails with UnresolvedPlaceholder after all seeds are
// known.
func TestMerge_UnknownPlaceholderFatal(t *testing.T) {
	in := mergeFixture(t)
	in.Project.Env = map[string]string{"X": "{sate_dir}/oops"}

	_, err := Merge(in)
	assert.ErrorIs(t, err, model.ErrUnresolvedPlaceholder)
}

// TestMerge_ToolchainSeed verifies that each planned toolchain contributes
// a toolchain_<name> placeholder seed with its container path.
func TestMerge_ToolchainSeed(t *testing.T) {
	in := mergeFixture(t)
	host := t.TempDir()
	in.Machine.Toolchains = map[string]MachineToolchain{
		"msvc": {HostPath: host, ContainerPath: "/opt/msvc", Mode: "ro"},
	}
	in.Project.Env = map[string]string{"MSVC_HOME": "{toolchain_msvc}"}

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, "/opt/msvc", eff.Env["MSVC_HOME"])
}

// TestMerge_VcpkgRequiresMachinePaths verifies that enabling vcpkg without
// machine-local paths is a configuration error, while a complete machine
// config derives the container paths.
func TestMerge_VcpkgRequiresMachinePaths(t *testing.T) {
	in := mergeFixture(t)
	in.Project.Vcpkg.Enabled = true

	_, err := Merge(in)
	assert.ErrorIs(t, err, model.ErrConfigParse)

	in.Machine.Vcpkg.HostRoot = filepath.Join(in.Root, ".wincross", "vcpkg")
	in.Machine.Vcpkg.HostBinaryCache = filepath.Join(in.Root, ".wincross", "vcpkg", "bincache")

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, ContainerRoot+"/.wincross/vcpkg", eff.Vcpkg.ContainerRoot)
	assert.Equal(t, ContainerRoot+"/.wincross/vcpkg/bincache", eff.Vcpkg.ContainerBinaryCache)
	assert.Equal(t, "x64-windows", eff.Vcpkg.Triplet)
}

// TestMerge_ProfileSelection verifies that the machine config's profile
// field selects a project profile before the layers merge.
func TestMerge_ProfileSelection(t *testing.T) {
	in := mergeFixture(t)
	in.Project.CMake.BuildType = "Debug"
	in.Project.Profiles = map[string]ProjectProfile{
		"release": {CMake: ProjectCMake{BuildType: "Release"}},
	}
	in.Machine.Profile = "release"

	eff, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, "Release", eff.BuildType)
	assert.Equal(t, "release", eff.Profile)
}
