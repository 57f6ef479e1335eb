package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProjectConfigFilename is the committed project config file name.
	ProjectConfigFilename = "wincross.toml"

	// StateDirname is the machine-local state directory under the root.
	StateDirname = ".wincross"

	// MachineConfigFilename is the machine config file inside StateDirname.
	MachineConfigFilename = "build_config.json"

	// ContainerRoot is where the project root is mounted in the container.
	ContainerRoot = "/work/project"

	// EnvRoot and EnvProjectConfig are the environment variables consulted
	// when the corresponding CLI flags are absent.
	EnvRoot          = "WINCROSS_ROOT"
	EnvProjectConfig = "WINCROSS_PROJECT_CONFIG"
)

// rootMarkers identify a project root when walking up from the working
// directory.
var rootMarkers = []string{".git", "CMakeLists.txt", ProjectConfigFilename}

// ResolveRoot determines the project root. Precedence: the --root flag,
// then WINCROSS_ROOT, then the nearest ancestor of the project config path
// (when one was given explicitly) or of the working directory that carries
// a root marker.
func ResolveRoot(flagRoot, flagProjectConfig string) (string, error) {
	if flagRoot != "" {
		return filepath.Abs(flagRoot)
	}
	if envRoot := os.Getenv(EnvRoot); envRoot != "" {
		return filepath.Abs(envRoot)
	}

	// An explicit project config path anchors the search at its directory.
	if cfg := firstNonEmpty(flagProjectConfig, os.Getenv(EnvProjectConfig)); cfg != "" {
		start, err := filepath.Abs(cfg)
		if err == nil {
			if info, statErr := os.Stat(start); statErr == nil && !info.IsDir() {
				start = filepath.Dir(start)
			}
			if root, ok := findRoot(start); ok {
				return root, nil
			}
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to determine working directory: %w", err)
	}
	if root, ok := findRoot(cwd); ok {
		return root, nil
	}
	return "", fmt.Errorf("unable to locate project root (use --root or set %s)", EnvRoot)
}

// findRoot walks from start to the filesystem root looking for a marker.
func findRoot(start string) (string, bool) {
	dir := start
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ProjectConfigPath resolves the project config location. Precedence:
// --project-config flag, WINCROSS_PROJECT_CONFIG, <root>/wincross.toml.
func ProjectConfigPath(root, flag string) string {
	if flag != "" {
		return absOrSelf(flag)
	}
	if env := os.Getenv(EnvProjectConfig); env != "" {
		return absOrSelf(env)
	}
	return filepath.Join(root, ProjectConfigFilename)
}

// MachineConfigPath resolves the machine config location. Precedence:
// --build-config flag, <root>/.wincross/build_config.json.
func MachineConfigPath(root, flag string) string {
	if flag != "" {
		return absOrSelf(flag)
	}
	return filepath.Join(StateDir(root), MachineConfigFilename)
}

// StateDir returns the machine-local state directory for a project root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirname)
}

// ToContainerPath maps a host path under the project root to its location
// inside the container. Paths outside the root have no container
// equivalent and are an error.
func ToContainerPath(hostPath, root string) (string, error) {
	rel, err := filepath.Rel(root, hostPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path must be under project root %s: %s", root, hostPath)
	}
	if rel == "." {
		return ContainerRoot, nil
	}
	return ContainerRoot + "/" + filepath.ToSlash(rel), nil
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
