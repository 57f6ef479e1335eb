package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/wincross-dev/wincross/internal/model"
)

// MachineToolchain is one toolchain entry in the machine config, keyed by
// name in the "toolchains" object.
type MachineToolchain struct {
	HostPath      string `json:"host_path"`
	ContainerPath string `json:"container_path,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

// MachineMount is one anonymous extra bind mount.
type MachineMount struct {
	HostPath      string `json:"host_path"`
	ContainerPath string `json:"container_path"`
	Mode          string `json:"mode,omitempty"`
}

// MachineVcpkg carries the machine-local half of the vcpkg settings.
// Enabled is a pointer so that an absent key inherits the project value
// while an explicit false disables vcpkg for this machine.
type MachineVcpkg struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	Triplet         string   `json:"triplet,omitempty"`
	Packages        []string `json:"packages,omitempty"`
	HostRoot        string   `json:"host_root,omitempty"`
	HostBinaryCache string   `json:"host_binary_cache,omitempty"`
}

// MachineConfig is the parsed .wincross/build_config.json: host-specific
// truth (local paths, caches, mount overrides) that must never be
// committed to the project config. It is written by `wincross init` and
// read at the start of every invocation.
type MachineConfig struct {
	Version       int                         `json:"version"`
	Image         string                      `json:"image,omitempty"`
	ProjectRoot   string                      `json:"project_root,omitempty"`
	StateDir      string                      `json:"state_dir,omitempty"`
	BuildDir      string                      `json:"build_dir,omitempty"`
	Generator     string                      `json:"generator,omitempty"`
	BuildType     string                      `json:"build_type,omitempty"`
	Profile       string                      `json:"profile,omitempty"`
	Toolchains    map[string]MachineToolchain `json:"toolchains,omitempty"`
	Mounts        []MachineMount              `json:"mounts,omitempty"`
	Env           map[string]string           `json:"env,omitempty"`
	PathPrepend   []string                    `json:"path_prepend,omitempty"`
	CacheDir      string                      `json:"cache_dir,omitempty"`
	Vcpkg         MachineVcpkg                `json:"vcpkg,omitempty"`
	CMakeDefaults []string                    `json:"cmake_defaults,omitempty"`
}

// machineConfigVersion is the current on-disk format version, written by
// init and tolerated on read (older versions share the same field set).
const machineConfigVersion = 2

// LoadMachine reads the machine config at path. Absence is not an error:
// callers receive a zero-value MachineConfig, and `wincross init` creates
// the file. The file is read through a JSONC filter so developers can
// annotate their machine-local settings with comments, the same tolerance
// applied to other developer-edited JSON config in this space.
func LoadMachine(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MachineConfig{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConfigParse, path, err)
	}

	var cfg MachineConfig
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConfigParse, path, err)
	}
	return &cfg, nil
}

// WriteMachine writes the machine config to path, creating parent
// directories as needed. An existing file is only replaced when force is
// set, so a stray re-run of init cannot silently clobber local settings.
func WriteMachine(path string, cfg *MachineConfig, force bool) error {
	if cfg.Version == 0 {
		cfg.Version = machineConfigVersion
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("machine config already exists: %s (use --force to overwrite)", path)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding machine config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ToolchainMounts converts the name-keyed toolchain entries to an ordered
// declaration list (lexicographic by name, matching the project config).
func (c *MachineConfig) ToolchainMounts() []model.ToolchainMount {
	return toolchainMounts(c.Toolchains, func(tc MachineToolchain) (string, string, string) {
		return tc.HostPath, tc.ContainerPath, tc.Mode
	})
}

// ExtraMounts converts the anonymous mounts list, preserving declaration
// order.
func (c *MachineConfig) ExtraMounts() []model.ToolchainMount {
	if len(c.Mounts) == 0 {
		return nil
	}
	mounts := make([]model.ToolchainMount, 0, len(c.Mounts))
	for _, m := range c.Mounts {
		mode := m.Mode
		if mode == "" {
			mode = string(model.ModeReadWrite)
		}
		mounts = append(mounts, model.ToolchainMount{
			HostPath:      m.HostPath,
			ContainerPath: m.ContainerPath,
			Mode:          model.MountMode(mode),
		})
	}
	return mounts
}
