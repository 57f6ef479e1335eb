package command

import (
	"fmt"
	"strings"

	"github.com/wincross-dev/wincross/internal/config"
	"github.com/wincross-dev/wincross/internal/model"
)

// Subcommand names accepted by Build.
const (
	SubConfigure = "configure"
	SubBuild     = "build"
	SubTest      = "test"
	SubShell     = "shell"
)

// msvcBinPaths are appended to the PATH prepend list so the MSVC wrappers
// in the toolchain image resolve without per-project configuration.
var msvcBinPaths = []string{"/opt/msvc/bin/x64", "/opt/msvc/bin"}

// containerBasePath is the PATH tail inside the container.
const containerBasePath = "/usr/local/bin:/usr/bin:/bin"

// Build constructs the full container invocation for one subcommand from
// the effective configuration. The extra-args string is shell-word-split
// and appended after the derived arguments, so the caller can override or
// extend any flag the tool computes. The result is handed straight to the
// dispatcher; nothing is executed here.
func Build(sub string, cfg *model.EffectiveConfig, extraArgs string) (*model.ContainerInvocation, error) {
	extra, err := Split(extraArgs)
	if err != nil {
		return nil, err
	}

	containerBuild, err := config.ToContainerPath(cfg.BuildDir, cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}

	inv := &model.ContainerInvocation{
		Image:   cfg.Image,
		Mounts:  mounts(cfg),
		Env:     environment(cfg),
		WorkDir: config.ContainerRoot,
	}

	switch sub {
	case SubConfigure:
		inv.Args = configureArgs(cfg, containerBuild, extra)
	case SubBuild:
		inv.Args = buildArgs(extra)
		inv.WorkDir = containerBuild
	case SubTest:
		inv.Args = testArgs(extra)
		inv.WorkDir = containerBuild
	case SubShell:
		inv.Args = []string{"bash", "--noprofile", "--norc"}
		inv.Interactive = true
	default:
		return nil, fmt.Errorf("unknown subcommand %q", sub)
	}
	return inv, nil
}

// configureArgs derives the cmake configure vector. Generator and build
// type are only injected when the combined defaults+extra don't already
// carry them, so a user -G or -DCMAKE_BUILD_TYPE= wins.
func configureArgs(cfg *model.EffectiveConfig, containerBuild string, extra []string) []string {
	args := []string{"cmake", "-S", config.ContainerRoot, "-B", containerBuild}

	combined := make([]string, 0, len(cfg.CMakeDefaults)+len(extra))
	combined = append(combined, cfg.CMakeDefaults...)
	combined = append(combined, extra...)

	if cfg.Generator != "" && !contains(combined, "-G") {
		args = append(args, "-G", cfg.Generator)
	}
	if cfg.BuildType != "" && !hasBuildType(combined) {
		args = append(args, "-DCMAKE_BUILD_TYPE="+cfg.BuildType)
	}
	args = append(args, cfg.CMakeDefaults...)
	args = append(args, extra...)
	return args
}

// buildArgs derives the cmake --build vector. The build runs from the
// build directory, so no explicit path argument is needed; --parallel is
// suppressed when the user passes their own job control.
func buildArgs(extra []string) []string {
	args := []string{"cmake", "--build", "."}
	if !hasJobControl(extra) {
		args = append(args, "--parallel")
	}
	return append(args, extra...)
}

// testArgs derives the ctest vector, run from the build directory.
func testArgs(extra []string) []string {
	args := []string{"ctest", "--output-on-failure"}
	if contains(extra, "--output-on-failure") {
		args = args[:1]
	}
	return append(args, extra...)
}

// mounts assembles the ordered bind-mount list: project root first, then
// toolchains, then extra mounts, matching the planner's deterministic
// order.
func mounts(cfg *model.EffectiveConfig) []model.ToolchainMount {
	out := make([]model.ToolchainMount, 0, 1+len(cfg.Toolchains)+len(cfg.Mounts))
	out = append(out, model.ToolchainMount{
		HostPath:      cfg.ProjectRoot,
		ContainerPath: config.ContainerRoot,
		Mode:          model.ModeReadWrite,
	})
	out = append(out, cfg.Toolchains...)
	out = append(out, cfg.Mounts...)
	return out
}

// environment composes the container environment: wine/sccache state under
// the state dir, the assembled PATH, vcpkg wiring when enabled, and the
// user env map passed through verbatim — user keys win on collision, no
// silent filtering.
func environment(cfg *model.EffectiveConfig) map[string]string {
	containerState, err := config.ToContainerPath(cfg.StateDir, cfg.ProjectRoot)
	if err != nil {
		// The merge already validated the state dir; an out-of-root state
		// dir cannot reach this point.
		containerState = config.ContainerRoot + "/" + config.StateDirname
	}

	env := map[string]string{
		"HOME":               containerState + "/home",
		"WINEPREFIX":         containerState + "/wine",
		"WINEDEBUG":          "-all",
		"SCCACHE_DIR":        containerState + "/sccache",
		"WINCROSS_STATE_DIR": containerState,
	}

	prepend := dedupe(append(append([]string{}, cfg.PathPrepend...), msvcBinPaths...))
	env["PATH"] = strings.Join(append(prepend, containerBasePath), ":")

	if cfg.Vcpkg.Enabled {
		env["VCPKG_ROOT"] = cfg.Vcpkg.ContainerRoot
		env["VCPKG_TARGET_TRIPLET"] = cfg.Vcpkg.Triplet
		env["VCPKG_DEFAULT_BINARY_CACHE"] = cfg.Vcpkg.ContainerBinaryCache
		env["VCPKG_BINARY_SOURCES"] = "clear;files," + cfg.Vcpkg.ContainerBinaryCache + ",readwrite"
	}

	for k, v := range cfg.Env {
		env[k] = v
	}
	return env
}

func contains(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func hasBuildType(args []string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, "-DCMAKE_BUILD_TYPE=") || strings.HasPrefix(a, "-DCMAKE_BUILD_TYPE:") {
			return true
		}
	}
	return false
}

func hasJobControl(args []string) bool {
	for _, a := range args {
		if a == "--parallel" || a == "-j" || strings.HasPrefix(a, "-j") {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
