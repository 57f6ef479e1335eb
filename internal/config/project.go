package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/wincross-dev/wincross/internal/model"
)

// ProjectCMake holds the [cmake] section of wincross.toml.
type ProjectCMake struct {
	Generator string   `toml:"generator,omitempty"`
	BuildType string   `toml:"build_type,omitempty"`
	BuildDir  string   `toml:"build_dir,omitempty"`
	Defaults  []string `toml:"defaults,omitempty"`
}

// ProjectToolchain is one [toolchains.<name>] table. The host path is
// usually machine-local and declared in the machine config instead; when
// the project does declare one it acts as a shared default.
type ProjectToolchain struct {
	HostPath      string `toml:"host_path,omitempty"`
	ContainerPath string `toml:"container_path,omitempty"`
	Mode          string `toml:"mode,omitempty"`
}

// ProjectVcpkg is the [vcpkg] section. Host paths are deliberately absent:
// they are machine truth and live in the machine config only; declaring
// them here fails closed as an unknown key.
type ProjectVcpkg struct {
	Enabled  bool     `toml:"enabled,omitempty"`
	Triplet  string   `toml:"triplet,omitempty"`
	Packages []string `toml:"packages,omitempty"`
}

// ProjectProfile is one [profiles.<name>] table: the same shape as the
// base config minus nested profiles, merged over the base when selected.
type ProjectProfile struct {
	Image       string                      `toml:"image,omitempty"`
	CMake       ProjectCMake                `toml:"cmake,omitempty"`
	Toolchains  map[string]ProjectToolchain `toml:"toolchains,omitempty"`
	Env         map[string]string           `toml:"env,omitempty"`
	PathPrepend []string                    `toml:"path_prepend,omitempty"`
	Vcpkg       *ProjectVcpkg               `toml:"vcpkg,omitempty"`
}

// ProjectConfig is the parsed wincross.toml. Values may contain {state_dir},
// {build_dir} and {config_dir} placeholders which stay unresolved until
// merge time. Immutable once loaded.
type ProjectConfig struct {
	Image          string                      `toml:"image,omitempty"`
	DefaultProfile string                      `toml:"default_profile,omitempty"`
	CMake          ProjectCMake                `toml:"cmake,omitempty"`
	Toolchains     map[string]ProjectToolchain `toml:"toolchains,omitempty"`
	Env            map[string]string           `toml:"env,omitempty"`
	PathPrepend    []string                    `toml:"path_prepend,omitempty"`
	Vcpkg          ProjectVcpkg                `toml:"vcpkg,omitempty"`
	Profiles       map[string]ProjectProfile   `toml:"profiles,omitempty"`
}

// LoadProject reads and parses the project config at path. A missing file
// is ErrConfigNotFound; malformed TOML or an unknown key is ErrConfigParse
// including the path and, when available, the position.
func LoadProject(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConfigParse, path, err)
	}

	var cfg ProjectConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, decodeError(path, err)
	}
	return &cfg, nil
}

// decodeError wraps a go-toml error as ErrConfigParse, pulling out the
// row/column for syntax errors and the offending keys for strict-mode
// (unknown field) failures.
func decodeError(path string, err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return fmt.Errorf("%w: %s:%d:%d: %s", model.ErrConfigParse, path, row, col, derr.Error())
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		return fmt.Errorf("%w: %s: unknown keys:\n%s", model.ErrConfigParse, path, serr.String())
	}
	return fmt.Errorf("%w: %s: %v", model.ErrConfigParse, path, err)
}

// ApplyProfile returns a copy of the config with the named profile merged
// over the base: lists append, maps merge key-by-key, toolchains merge by
// name, scalars override. An empty name returns the base unchanged; an
// undefined name is an error rather than a silent no-op.
func (c *ProjectConfig) ApplyProfile(name string) (*ProjectConfig, error) {
	if name == "" {
		return c, nil
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: profile %q is not defined in the project config",
			model.ErrConfigParse, name)
	}

	merged := *c
	merged.Profiles = nil

	if profile.Image != "" {
		merged.Image = profile.Image
	}
	if profile.CMake.Generator != "" {
		merged.CMake.Generator = profile.CMake.Generator
	}
	if profile.CMake.BuildType != "" {
		merged.CMake.BuildType = profile.CMake.BuildType
	}
	if profile.CMake.BuildDir != "" {
		merged.CMake.BuildDir = profile.CMake.BuildDir
	}
	merged.CMake.Defaults = appendList(c.CMake.Defaults, profile.CMake.Defaults)
	merged.PathPrepend = appendList(c.PathPrepend, profile.PathPrepend)
	merged.Env = mergeStringMap(c.Env, profile.Env)
	merged.Toolchains = mergeToolchainMap(c.Toolchains, profile.Toolchains)
	if profile.Vcpkg != nil {
		merged.Vcpkg = *profile.Vcpkg
	}
	return &merged, nil
}

// ToolchainMounts converts the name-keyed toolchain tables to an ordered
// declaration list. TOML tables arrive as an unordered map, so the order
// is fixed lexicographically by name to stay deterministic across machines.
func (c *ProjectConfig) ToolchainMounts() []model.ToolchainMount {
	return toolchainMounts(c.Toolchains, func(tc ProjectToolchain) (string, string, string) {
		return tc.HostPath, tc.ContainerPath, tc.Mode
	})
}

// toolchainMounts flattens a name-keyed toolchain map into a sorted
// declaration list, shared by the project and machine config types.
func toolchainMounts[T any](m map[string]T, fields func(T) (host, container, mode string)) []model.ToolchainMount {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	mounts := make([]model.ToolchainMount, 0, len(names))
	for _, name := range names {
		host, container, mode := fields(m[name])
		mounts = append(mounts, model.ToolchainMount{
			Name:          name,
			HostPath:      host,
			ContainerPath: container,
			Mode:          model.MountMode(mode),
		})
	}
	return mounts
}

func appendList(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

func mergeStringMap(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func mergeToolchainMap(base, override map[string]ProjectToolchain) map[string]ProjectToolchain {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]ProjectToolchain, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if prev, ok := out[k]; ok {
			if v.HostPath == "" {
				v.HostPath = prev.HostPath
			}
			if v.ContainerPath == "" {
				v.ContainerPath = prev.ContainerPath
			}
			if v.Mode == "" {
				v.Mode = prev.Mode
			}
		}
		out[k] = v
	}
	return out
}
