package mount

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wincross-dev/wincross/internal/model"
)

// ParseToolchainSpec parses a toolchain declaration of the form
// name=hostpath[:containerpath[:mode]]. A relative host path is resolved
// against root. The container path may be omitted when the project config
// declares it for the same name; the mode defaults to ro.
func ParseToolchainSpec(spec, root string) (model.ToolchainMount, error) {
	name, rest, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return model.ToolchainMount{}, fmt.Errorf(
			"%w: %q (expected name=hostpath[:containerpath[:ro|rw]])",
			model.ErrInvalidMountSpec, spec)
	}

	mnt, err := parseHostContainerMode(rest, root, true)
	if err != nil {
		return model.ToolchainMount{}, fmt.Errorf("toolchain %q: %w", name, err)
	}
	mnt.Name = name
	return mnt, nil
}

// ParseMountSpec parses an anonymous extra-mount declaration of the form
// hostpath:containerpath[:mode]. Unlike toolchain specs the container path
// is mandatory, and an omitted mode defaults to rw — extra mounts exist to
// expose machine-local writable data (caches, artifact dirs), whereas
// toolchain mounts default to ro.
func ParseMountSpec(spec, root string) (model.ToolchainMount, error) {
	explicitMode := strings.Count(spec, ":") >= 2
	mnt, err := parseHostContainerMode(spec, root, false)
	if err != nil {
		return model.ToolchainMount{}, err
	}
	if !explicitMode {
		mnt.Mode = model.ModeReadWrite
	}
	return mnt, nil
}

// parseHostContainerMode parses host[:container[:mode]]. Splitting on ":"
// is safe here because host paths are POSIX paths on the Linux host and
// container paths are absolute POSIX paths.
func parseHostContainerMode(s, root string, containerOptional bool) (model.ToolchainMount, error) {
	parts := strings.Split(s, ":")
	if parts[0] == "" {
		return model.ToolchainMount{}, fmt.Errorf("%w: %q (missing host path)", model.ErrInvalidMountSpec, s)
	}
	if len(parts) > 3 {
		return model.ToolchainMount{}, fmt.Errorf("%w: %q (too many fields)", model.ErrInvalidMountSpec, s)
	}

	host := parts[0]
	if !filepath.IsAbs(host) {
		host = filepath.Join(root, host)
	}
	host = filepath.Clean(host)

	container := ""
	if len(parts) > 1 {
		container = parts[1]
	}
	if container == "" && !containerOptional {
		return model.ToolchainMount{}, fmt.Errorf("%w: %q (missing container path)", model.ErrInvalidMountSpec, s)
	}

	modeStr := ""
	if len(parts) > 2 {
		modeStr = parts[2]
	}
	mode, err := model.ParseMountMode(modeStr)
	if err != nil {
		return model.ToolchainMount{}, fmt.Errorf("%w in %q", err, s)
	}

	return model.ToolchainMount{HostPath: host, ContainerPath: container, Mode: mode}, nil
}

// Validate checks a single mount against the invariants: the host path
// exists on the local filesystem, the container path is absolute, and the
// mode is one of the two recognized literals.
func Validate(mnt model.ToolchainMount) error {
	label := mnt.Name
	if label == "" {
		label = mnt.HostPath
	}

	if mnt.ContainerPath == "" || !strings.HasPrefix(mnt.ContainerPath, "/") {
		return fmt.Errorf("%w: mount %q container path %q must be absolute",
			model.ErrInvalidMountSpec, label, mnt.ContainerPath)
	}
	if !mnt.Mode.IsValid() {
		return fmt.Errorf("%w: mount %q mode %q (valid: ro, rw)",
			model.ErrInvalidMountSpec, label, mnt.Mode)
	}
	if _, err := os.Stat(mnt.HostPath); err != nil {
		return fmt.Errorf("%w: mount %q host path %s",
			model.ErrMountPathNotFound, label, mnt.HostPath)
	}
	return nil
}

// Plan merges project-config and machine-config toolchain declarations
// into one validated, deterministically ordered mount list and validates
// the anonymous extra mounts alongside.
//
// Merge rule: a machine entry whose name matches a project entry replaces
// it but keeps the project entry's position; machine-only entries are
// appended in their own declaration order. Missing fields in a machine
// override (empty container path or unset mode) inherit the project
// entry's values.
//
// Two mounts targeting the same container path are a fatal MountConflict
// naming both declarations, regardless of which list they came from.
func Plan(project, machine, extra []model.ToolchainMount) (toolchains, mounts []model.ToolchainMount, err error) {
	merged := MergeByName(project, machine)

	for _, tc := range merged {
		if tc.HostPath == "" {
			return nil, nil, fmt.Errorf(
				"%w: toolchain %q has no host path (declare it in the machine config or via --toolchain)",
				model.ErrInvalidMountSpec, tc.Name)
		}
		if err := Validate(tc); err != nil {
			return nil, nil, err
		}
	}
	for _, m := range extra {
		if err := Validate(m); err != nil {
			return nil, nil, err
		}
	}

	if err := checkContainerPathConflicts(merged, extra); err != nil {
		return nil, nil, err
	}
	return merged, extra, nil
}

// MergeByName merges an override declaration list over a base list. An
// override whose name matches a base entry replaces it in place, inheriting
// the container path and mode where the override leaves them unset;
// override-only entries are appended in their own order. Entries with an
// unset mode default to ro. No validation happens here — Plan does that.
func MergeByName(base, override []model.ToolchainMount) []model.ToolchainMount {
	merged := make([]model.ToolchainMount, 0, len(base)+len(override))
	index := make(map[string]int, len(base))

	for _, tc := range base {
		if tc.Mode == "" {
			tc.Mode = model.ModeReadOnly
		}
		index[tc.Name] = len(merged)
		merged = append(merged, tc)
	}
	for _, tc := range override {
		if i, ok := index[tc.Name]; ok {
			if tc.ContainerPath == "" {
				tc.ContainerPath = merged[i].ContainerPath
			}
			if tc.Mode == "" {
				tc.Mode = merged[i].Mode
			}
			merged[i] = tc
			continue
		}
		if tc.Mode == "" {
			tc.Mode = model.ModeReadOnly
		}
		index[tc.Name] = len(merged)
		merged = append(merged, tc)
	}
	return merged
}

// checkContainerPathConflicts rejects duplicate container paths across all
// planned mounts. Two declarations under the same name never reach this
// point (the override merge collapses them), so any duplicate here is a
// genuine conflict between distinct declarations.
func checkContainerPathConflicts(toolchains, extra []model.ToolchainMount) error {
	owner := make(map[string]string)
	check := func(mnt model.ToolchainMount) error {
		label := mnt.Name
		if label == "" {
			label = "mount " + mnt.HostPath
		} else {
			label = "toolchain " + label
		}
		if prev, ok := owner[mnt.ContainerPath]; ok {
			return fmt.Errorf("%w: container path %s declared by both %s and %s",
				model.ErrMountConflict, mnt.ContainerPath, prev, label)
		}
		owner[mnt.ContainerPath] = label
		return nil
	}

	for _, tc := range toolchains {
		if err := check(tc); err != nil {
			return err
		}
	}
	for _, m := range extra {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}
