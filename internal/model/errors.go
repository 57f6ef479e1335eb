package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure kind detected during configuration
// resolution. All of them abort the pipeline before any subprocess is
// started; use errors.Is to classify a wrapped error.
var (
	// ErrConfigNotFound is returned when the resolved project config file
	// does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// ErrConfigParse is returned on malformed TOML/JSON, including the
	// file path and position when available.
	ErrConfigParse = errors.New("config parse error")

	// ErrMergeConflict is returned when two override sources at the same
	// precedence level disagree irreconcilably.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrMountPathNotFound is returned when a declared host path does not
	// exist on the local filesystem.
	ErrMountPathNotFound = errors.New("mount host path not found")

	// ErrInvalidMountSpec is returned for malformed mount declarations:
	// relative container paths, unknown modes, missing fields.
	ErrInvalidMountSpec = errors.New("invalid mount spec")

	// ErrMountConflict is returned when two declarations with different
	// names target the same container path.
	ErrMountConflict = errors.New("mount conflict")

	// ErrArgsParse is returned when an extra-args string has unbalanced
	// quoting.
	ErrArgsParse = errors.New("args parse error")

	// ErrPlaceholderCycle is returned when placeholder values reference
	// each other circularly.
	ErrPlaceholderCycle = errors.New("placeholder cycle")

	// ErrUnresolvedPlaceholder is returned when a {...} token survives
	// after all resolution passes.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

	// ErrSubprocessLaunch is returned when the container subprocess could
	// not be started at all (as opposed to exiting non-zero).
	ErrSubprocessLaunch = errors.New("subprocess launch error")
)

// ExitCode defines the CLI exit codes. Configuration and argument errors
// use a reserved band starting at 64 so they can never be mistaken for a
// container subprocess exit status, which is propagated untouched.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates invalid CLI arguments, including unbalanced
	// quoting in --*-args strings.
	ExitUsage ExitCode = 64

	// ExitConfigNotFound indicates the project config file was not found.
	ExitConfigNotFound ExitCode = 65

	// ExitConfigParse indicates malformed TOML/JSON configuration.
	ExitConfigParse ExitCode = 66

	// ExitMergeConflict indicates irreconcilable same-precedence overrides.
	ExitMergeConflict ExitCode = 67

	// ExitMountError indicates an invalid, missing or conflicting mount.
	ExitMountError ExitCode = 68

	// ExitPlaceholderError indicates a placeholder cycle or an unresolved
	// placeholder token.
	ExitPlaceholderError ExitCode = 69

	// ExitLaunchError indicates the container subprocess failed to start.
	ExitLaunchError ExitCode = 70

	// ExitDockerUnavailable indicates the Docker daemon is not reachable
	// (doctor subcommand).
	ExitDockerUnavailable ExitCode = 71
)

// ExitCodeFor maps an error to its CLI exit code by classifying the
// sentinel it wraps. Unrecognized errors map to ExitGeneralError.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrArgsParse):
		return ExitUsage
	case errors.Is(err, ErrConfigNotFound):
		return ExitConfigNotFound
	case errors.Is(err, ErrConfigParse):
		return ExitConfigParse
	case errors.Is(err, ErrMergeConflict):
		return ExitMergeConflict
	case errors.Is(err, ErrMountPathNotFound),
		errors.Is(err, ErrInvalidMountSpec),
		errors.Is(err, ErrMountConflict):
		return ExitMountError
	case errors.Is(err, ErrPlaceholderCycle),
		errors.Is(err, ErrUnresolvedPlaceholder):
		return ExitPlaceholderError
	case errors.Is(err, ErrSubprocessLaunch):
		return ExitLaunchError
	default:
		return ExitGeneralError
	}
}

// CLIError is a custom error type that carries an exit code. The CLI layer
// uses it to translate domain errors into process exit codes; the container
// subprocess's own exit status travels through here as well.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
