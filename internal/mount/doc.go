// Package mount parses toolchain and extra-mount declarations and plans
// the container bind-mount list.
//
// A toolchain declaration has the form name=hostpath[:containerpath[:mode]]
// and an extra mount the form hostpath:containerpath[:mode]. Planning
// validates every declaration (host path exists, container path absolute,
// mode recognized), merges machine-config entries over project-config
// entries by name, and rejects duplicate container paths.
//
// The resulting order is deterministic: project declarations in
// declaration order, machine-only declarations appended, overridden
// entries keeping their original position.
package mount
