package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wincross-dev/wincross/internal/model"
)

// writeProject writes a wincross.toml fixture and returns its path.
func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ProjectConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadProject parses a representative config covering every section.
func TestLoadProject(t *testing.T) {
	path := writeProject(t, `
image = "ghcr.io/example/msvc:latest"
default_profile = "release"

[cmake]
generator = "Ninja"
build_type = "RelWithDebInfo"
build_dir = "{state_dir}/build-windows"
defaults = ["-DCMAKE_CXX_STANDARD=20"]

[toolchains.msvc]
container_path = "/opt/msvc"
mode = "ro"

[env]
SCCACHE_CACHE_SIZE = "20G"

[vcpkg]
enabled = true
triplet = "x64-windows-static"
packages = ["zlib"]

[profiles.release.cmake]
build_type = "Release"
`)

	cfg, err := LoadProject(path)
	require.NoError(t, err)

	assert.Equal(t, "ghcr.io/example/msvc:latest", cfg.Image)
	assert.Equal(t, "release", cfg.DefaultProfile)
	assert.Equal(t, "Ninja", cfg.CMake.Generator)
	assert.Equal(t, "{state_dir}/build-windows", cfg.CMake.BuildDir)
	assert.Equal(t, "/opt/msvc", cfg.Toolchains["msvc"].ContainerPath)
	assert.Equal(t, "20G", cfg.Env["SCCACHE_CACHE_SIZE"])
	assert.True(t, cfg.Vcpkg.Enabled)
	assert.Contains(t, cfg.Profiles, "release")
}

// TestLoadProject_NotFound verifies the ConfigNotFound error kind for a
// missing file.
func TestLoadProject_NotFound(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, model.ErrConfigNotFound)
}

// TestLoadProject_Malformed verifies that a syntax error surfaces as
// ConfigParseError with the file path in the message.
func TestLoadProject_Malformed(t *testing.T) {
	path := writeProject(t, "image = [unclosed")
	_, err := LoadProject(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfigParse)
	assert.Contains(t, err.Error(), path)
}

// TestLoadProject_UnknownKeyFailsClosed verifies the explicit-schema rule:
// an unrecognized key is an error naming the key, not silently dropped.
func TestLoadProject_UnknownKeyFailsClosed(t *testing.T) {
	path := writeProject(t, "imaage = \"typo\"\n")
	_, err := LoadProject(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfigParse)
	assert.Contains(t, err.Error(), "imaage")
}

// TestLoadProject_VcpkgHostPathRejected verifies that machine-local vcpkg
// paths cannot sneak into the committed project config.
func TestLoadProject_VcpkgHostPathRejected(t *testing.T) {
	path := writeProject(t, "[vcpkg]\nenabled = true\nhost_root = \"/home/me/vcpkg\"\n")
	_, err := LoadProject(path)
	assert.ErrorIs(t, err, model.ErrConfigParse)
}

// TestApplyProfile verifies profile merge semantics: scalars override,
// lists append, env merges key-by-key, toolchains merge by name.
func TestApplyProfile(t *testing.T) {
	path := writeProject(t, `
[cmake]
build_type = "Debug"
defaults = ["-DA=1"]

[env]
A = "base"
B = "base"

[toolchains.msvc]
container_path = "/opt/msvc"

[profiles.release]
[profiles.release.cmake]
build_type = "Release"
defaults = ["-DB=2"]
[profiles.release.env]
B = "release"
[profiles.release.toolchains.msvc]
mode = "rw"
`)
	cfg, err := LoadProject(path)
	require.NoError(t, err)

	merged, err := cfg.ApplyProfile("release")
	require.NoError(t, err)

	assert.Equal(t, "Release", merged.CMake.BuildType)
	assert.Equal(t, []string{"-DA=1", "-DB=2"}, merged.CMake.Defaults)
	assert.Equal(t, "base", merged.Env["A"])
	assert.Equal(t, "release", merged.Env["B"])
	// The profile toolchain entry inherits the base container path.
	assert.Equal(t, "/opt/msvc", merged.Toolchains["msvc"].ContainerPath)
	assert.Equal(t, "rw", merged.Toolchains["msvc"].Mode)
}

// TestApplyProfile_Undefined verifies that selecting a profile that does
// not exist is an error, not a silent no-op.
func TestApplyProfile_Undefined(t *testing.T) {
	cfg := &ProjectConfig{}
	_, err := cfg.ApplyProfile("nope")
	assert.ErrorIs(t, err, model.ErrConfigParse)
}

// TestToolchainMounts_DeterministicOrder verifies the lexicographic
// ordering of the name-keyed toolchain tables.
func TestToolchainMounts_DeterministicOrder(t *testing.T) {
	cfg := &ProjectConfig{Toolchains: map[string]ProjectToolchain{
		"winsdk": {ContainerPath: "/opt/winsdk"},
		"msvc":   {ContainerPath: "/opt/msvc"},
	}}

	mounts := cfg.ToolchainMounts()
	require.Len(t, mounts, 2)
	assert.Equal(t, "msvc", mounts[0].Name)
	assert.Equal(t, "winsdk", mounts[1].Name)
}
