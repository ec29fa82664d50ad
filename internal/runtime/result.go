// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

var (
	// ErrLaunchFailed is the sentinel error wrapped by LaunchError.
	ErrLaunchFailed = errors.New("launch failed")

	// ErrUVNotFound is wrapped by LaunchError when the uv binary cannot be started.
	ErrUVNotFound = errors.New("uv executable not found")
)

type (
	// Result holds everything captured from one child process.
	Result struct {
		// ExitCode is the child's exit status.
		ExitCode ExitCode
		// Stdout is the captured standard output, trimmed of surrounding whitespace.
		Stdout string
		// Stderr is the captured standard error, trimmed of surrounding whitespace.
		Stderr string
		// Duration is the wall time between start and exit.
		Duration time.Duration
		// Truncated is set when either stream exceeded the capture limit.
		Truncated bool
	}

	// LaunchError reports a child that exited non-zero, timed out, or could
	// not be started. Stdout and Stderr hold whatever was captured.
	LaunchError struct {
		ExitCode ExitCode
		Stdout   string
		Stderr   string
		// Err is the underlying cause: an *exec.ExitError, a context error,
		// or the error returned when starting the process.
		Err error
	}
)

// Success reports whether the child exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return fmt.Sprintf("`uv run` timed out (exit code %d)", e.ExitCode)
	case errors.Is(e.Err, context.Canceled):
		return fmt.Sprintf("`uv run` was interrupted (exit code %d)", e.ExitCode)
	case e.startFailure():
		return fmt.Sprintf("could not start `uv`: %v", e.Err)
	default:
		return fmt.Sprintf("`uv run` failed with exit code %d", e.ExitCode)
	}
}

// Unwrap exposes ErrLaunchFailed and the underlying cause, plus ErrUVNotFound
// when the binary could not be located.
func (e *LaunchError) Unwrap() []error {
	errs := []error{ErrLaunchFailed}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if errors.Is(e.Err, exec.ErrNotFound) {
		errs = append(errs, ErrUVNotFound)
	}
	return errs
}

// TimedOut reports whether the launch was killed by its deadline.
func (e *LaunchError) TimedOut() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func (e *LaunchError) startFailure() bool {
	if e.Err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return !errors.As(e.Err, &exitErr)
}
