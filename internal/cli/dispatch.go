package cli

import (
	"context"

	"github.com/wincross-dev/wincross/internal/command"
	"github.com/wincross-dev/wincross/internal/docker"
)

// dispatch resolves the effective configuration, composes the container
// invocation for one subcommand and runs it, returning the container's
// exit status as the command error. Shared by configure, build, test and
// shell.
func dispatch(ctx context.Context, sub string, flags *overrideFlags, extraArgs []string) error {
	cfg, err := resolveEffective(flags)
	if err != nil {
		return err
	}

	inv, err := command.Build(sub, cfg, joinArgs(extraArgs))
	if err != nil {
		return err
	}

	if inv.Interactive {
		return docker.RunInteractive(ctx, inv, logger)
	}
	return docker.Run(ctx, inv, logger)
}
