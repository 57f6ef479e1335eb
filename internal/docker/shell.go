package docker

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/wincross-dev/wincross/internal/model"
)

// RunInteractive executes an interactive container invocation under a
// pseudo-terminal: the local terminal is switched to raw mode, window
// resizes are propagated via SIGWINCH, and stdio is copied both ways.
// Without a PTY, docker's -t flag fails and the container shell gets no
// line editing.
//
// When stdin is not a terminal (piped input, CI), the invocation falls
// back to a plain run with inherited stdio.
func RunInteractive(ctx context.Context, inv *model.ContainerInvocation, logger *log.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Debug("stdin is not a terminal, running without a pty")
		plain := *inv
		plain.Interactive = false
		return Run(ctx, &plain, logger)
	}

	args := RunArgs(inv, os.Getuid(), os.Getgid())
	logger.Debug("running interactive container", "argv", append([]string{dockerBinary}, args...))

	cmd := exec.CommandContext(ctx, dockerBinary, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return model.WrapCLIError(
			model.ExitLaunchError,
			"failed to start interactive container",
			errors.Join(model.ErrSubprocessLaunch, err),
		)
	}
	defer ptmx.Close()

	stopResize := propagateWinsize(ptmx)
	defer stopResize()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return model.WrapCLIError(
			model.ExitLaunchError,
			"failed to switch terminal to raw mode",
			errors.Join(model.ErrSubprocessLaunch, err),
		)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return model.WrapCLIError(
				model.ExitCode(exitErr.ExitCode()),
				"shell exited with an error",
				err,
			)
		}
		return model.WrapCLIError(
			model.ExitLaunchError,
			"interactive container failed",
			errors.Join(model.ErrSubprocessLaunch, err),
		)
	}
	return nil
}

// propagateWinsize keeps the pty sized to the local terminal, resizing on
// SIGWINCH until the returned stop function is called. The initial resize
// runs immediately so the container shell starts with the right geometry.
func propagateWinsize(ptmx *os.File) func() {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	resize := func() {
		_ = pty.InheritSize(os.Stdin, ptmx)
	}
	resize()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-winch:
				resize()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(winch)
		close(done)
	}
}
