package docker

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/wincross-dev/wincross/internal/model"
)

// dockerBinary is resolved from PATH at run time.
const dockerBinary = "docker"

// Run executes a non-interactive container invocation as a docker-run
// subprocess with inherited stdio. SIGINT and SIGTERM received while the
// container runs are forwarded to the subprocess so Ctrl-C interrupts the
// build inside the container rather than orphaning it.
//
// A failure to start at all returns ExitLaunchError; a container that
// starts and exits non-zero returns a CLIError carrying that exact exit
// status, which the CLI layer passes through to the OS untouched.
func Run(ctx context.Context, inv *model.ContainerInvocation, logger *log.Logger) error {
	args := RunArgs(inv, os.Getuid(), os.Getgid())
	logger.Debug("running container", "argv", append([]string{dockerBinary}, args...))

	cmd := exec.CommandContext(ctx, dockerBinary, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return model.WrapCLIError(
			model.ExitLaunchError,
			"failed to start container subprocess",
			errors.Join(model.ErrSubprocessLaunch, err),
		)
	}

	stop := forwardSignals(cmd.Process)
	defer stop()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return model.WrapCLIError(
				model.ExitCode(exitErr.ExitCode()),
				"container exited with an error",
				err,
			)
		}
		return model.WrapCLIError(
			model.ExitLaunchError,
			"container subprocess failed",
			errors.Join(model.ErrSubprocessLaunch, err),
		)
	}
	return nil
}

// forwardSignals relays SIGINT and SIGTERM to the subprocess until the
// returned stop function is called.
func forwardSignals(proc *os.Process) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				// Best effort: the subprocess may already have exited.
				_ = proc.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
