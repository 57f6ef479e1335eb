package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wincross-dev/wincross/internal/config"
	"github.com/wincross-dev/wincross/internal/model"
)

// withGlobalFlags sets the persistent-flag globals for one test and
// restores them afterwards.
func withGlobalFlags(t *testing.T, root string) {
	t.Helper()
	oldRoot, oldProject, oldBuild := flagRoot, flagProjectConfig, flagBuildConfig
	flagRoot, flagProjectConfig, flagBuildConfig = root, "", ""
	t.Cleanup(func() {
		flagRoot, flagProjectConfig, flagBuildConfig = oldRoot, oldProject, oldBuild
	})
}

// TestCollectOverrides verifies that flag values and WINCROSS_* variables
// land in the override list with their correct sources.
func TestCollectOverrides(t *testing.T) {
	t.Setenv("WINCROSS_IMAGE", "ghcr.io/example/env:1")

	overrides := collectOverrides(&overrideFlags{buildType: "Debug"})

	assert.Contains(t, overrides, model.Override{
		Source: model.SourceEnv, Key: config.KeyImage, Value: "ghcr.io/example/env:1",
	})
	assert.Contains(t, overrides, model.Override{
		Source: model.SourceFlag, Key: config.KeyBuildType, Value: "Debug",
	})
}

// TestCollectOverrides_EmptySkipped verifies that unset flags and
// variables produce no override entries at all.
func TestCollectOverrides_EmptySkipped(t *testing.T) {
	for env := range envOverrideKeys {
		t.Setenv(env, "")
	}
	assert.Empty(t, collectOverrides(&overrideFlags{}))
}

// TestParseEnvFlags verifies KEY=VALUE parsing and the usage error for
// malformed entries.
func TestParseEnvFlags(t *testing.T) {
	env, err := parseEnvFlags([]string{"A=1", "B=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, env)

	_, err = parseEnvFlags([]string{"NOVALUE"})
	assert.ErrorIs(t, err, model.ErrArgsParse)

	_, err = parseEnvFlags([]string{"=1"})
	assert.ErrorIs(t, err, model.ErrArgsParse)
}

// TestNewRootCommand_Subcommands verifies every subcommand is registered.
func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"init", "configure", "build", "test", "shell", "doctor"} {
		assert.Contains(t, names, want)
	}
}

// TestRunInit verifies the written machine config and the state directory
// layout.
func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	withGlobalFlags(t, dir)

	toolchainDir := filepath.Join(dir, "msvc")
	require.NoError(t, os.Mkdir(toolchainDir, 0o755))

	err := runInit(
		&overrideFlags{
			image:      "ghcr.io/example/msvc:latest",
			buildType:  "Debug",
			toolchains: []string{"msvc=" + toolchainDir + ":/opt/msvc:ro"},
		},
		&initFlags{
			env:       []string{"SCCACHE_CACHE_SIZE=20G"},
			cmakeArgs: []string{"-DCMAKE_CXX_STANDARD=20"},
		},
	)
	require.NoError(t, err)

	machine, err := config.LoadMachine(config.MachineConfigPath(dir, ""))
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io/example/msvc:latest", machine.Image)
	assert.Equal(t, "Debug", machine.BuildType)
	assert.Equal(t, dir, machine.ProjectRoot)
	assert.Equal(t, "20G", machine.Env["SCCACHE_CACHE_SIZE"])
	assert.Equal(t, []string{"-DCMAKE_CXX_STANDARD=20"}, machine.CMakeDefaults)
	require.Contains(t, machine.Toolchains, "msvc")
	assert.Equal(t, toolchainDir, machine.Toolchains["msvc"].HostPath)

	for _, sub := range stateSubdirs {
		assert.DirExists(t, filepath.Join(dir, config.StateDirname, sub))
	}
}

// TestRunInit_RefusesOverwrite verifies that a second init without --force
// leaves the existing machine config alone.
func TestRunInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	withGlobalFlags(t, dir)

	require.NoError(t, runInit(&overrideFlags{image: "first"}, &initFlags{}))
	err := runInit(&overrideFlags{image: "second"}, &initFlags{})
	require.Error(t, err)

	machine, err := config.LoadMachine(config.MachineConfigPath(dir, ""))
	require.NoError(t, err)
	assert.Equal(t, "first", machine.Image)

	require.NoError(t, runInit(&overrideFlags{image: "second"}, &initFlags{force: true}))
	machine, err = config.LoadMachine(config.MachineConfigPath(dir, ""))
	require.NoError(t, err)
	assert.Equal(t, "second", machine.Image)
}

// TestResolveEffective verifies the full pipeline against an on-disk
// project fixture: config load, machine overlay and flag overrides.
func TestResolveEffective(t *testing.T) {
	dir := t.TempDir()
	withGlobalFlags(t, dir)

	toml := `
[cmake]
generator = "Ninja"
build_dir = "{state_dir}/build-windows"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectConfigFilename), []byte(toml), 0o644))

	cfg, err := resolveEffective(&overrideFlags{buildType: "Debug"})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, ".wincross", "build-windows"), cfg.BuildDir)
	assert.Equal(t, "Debug", cfg.BuildType)
	assert.Equal(t, config.DefaultImage, cfg.Image)
}

// TestResolveEffective_MissingProjectConfig verifies the not-found error
// kind surfaces unchanged.
func TestResolveEffective_MissingProjectConfig(t *testing.T) {
	dir := t.TempDir()
	withGlobalFlags(t, dir)

	_, err := resolveEffective(&overrideFlags{})
	assert.ErrorIs(t, err, model.ErrConfigNotFound)
}
