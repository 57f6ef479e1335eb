package docker

import (
	"fmt"
	"sort"

	"github.com/wincross-dev/wincross/internal/model"
)

// RunArgs renders a container invocation into the docker-run argument
// vector, starting after the "docker" binary itself:
//
//	run --rm [-it] -u uid:gid -v ... -e K=V ... -w workdir image args...
//
// Mounts keep their planned order. Environment variables are emitted in
// sorted key order so the argv is deterministic and diffable across runs.
func RunArgs(inv *model.ContainerInvocation, uid, gid int) []string {
	args := []string{"run", "--rm"}
	if inv.Interactive {
		args = append(args, "-it")
	}
	args = append(args, "-u", fmt.Sprintf("%d:%d", uid, gid))

	for _, m := range inv.Mounts {
		args = append(args, "-v", m.VolumeFlag())
	}

	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+inv.Env[k])
	}

	if inv.WorkDir != "" {
		args = append(args, "-w", inv.WorkDir)
	}

	args = append(args, inv.Image)
	return append(args, inv.Args...)
}
