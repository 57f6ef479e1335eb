package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wincross-dev/wincross/internal/docker"
	"github.com/wincross-dev/wincross/internal/model"
)

// NewDoctorCommand creates the "doctor" cobra command: validate the
// resolved configuration and check Docker daemon availability.
func NewDoctorCommand() *cobra.Command {
	flags := &overrideFlags{}
	var dump bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the configuration and check Docker availability",
		Long: `Resolve the full configuration the way configure/build/test would,
report what it found, and ping the Docker daemon. Any resolution error
(missing config, bad mount, unresolved placeholder) is reported with the
same exit code the build subcommands would use.

With --dump, print the effective configuration as YAML instead:

  wincross doctor
  wincross doctor --dump
  wincross doctor --profile release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags, dump)
		},
	}

	addOverrideFlags(cmd, flags)
	cmd.Flags().BoolVar(&dump, "dump", false,
		"Print the effective configuration as YAML")

	return cmd
}

// runDoctor resolves the effective configuration and reports its health.
// Resolution itself already validates mounts and placeholders, so the
// per-item output here is a readable account of what a build would use,
// followed by the one check resolution cannot do: a daemon ping.
func runDoctor(ctx context.Context, flags *overrideFlags, dump bool) error {
	cfg, err := resolveEffective(flags)
	if err != nil {
		return err
	}

	if dump {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				"cannot encode effective configuration", err)
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	}

	report := func(name, detail string) {
		fmt.Fprintf(os.Stdout, "ok: %-14s %s\n", name, detail)
	}
	report("image", cfg.Image)
	report("project root", cfg.ProjectRoot)
	report("build dir", cfg.BuildDir)
	for _, tc := range cfg.Toolchains {
		report("toolchain", tc.Spec())
	}
	for _, m := range cfg.Mounts {
		report("mount", m.Spec())
	}
	if cfg.Vcpkg.Enabled {
		report("vcpkg", fmt.Sprintf("%s (%s)", cfg.Vcpkg.HostRoot, cfg.Vcpkg.Triplet))
	}

	client, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Ping(ctx); err != nil {
		return err
	}
	report("docker", "daemon is responding")
	return nil
}
