// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// DefaultBinary is the uv executable looked up on PATH.
	DefaultBinary = "uv"

	defaultWaitDelay = 5 * time.Second
)

type (
	// Launcher starts one isolated child per request.
	Launcher interface {
		// Launch runs the child to completion and returns what it captured.
		Launch(ctx context.Context, req LaunchRequest) (*Result, error)
		// Describe renders the command line Launch would run.
		Describe(req LaunchRequest) string
	}

	// LaunchRequest describes one child process.
	LaunchRequest struct {
		// Script is the absolute path of the target script (for logging).
		Script string
		// Dependencies become one --with flag each, in order.
		Dependencies []string
		// Python is the script's interpreter constraint. A configured
		// UVRuntime.Python takes precedence.
		Python string
		// Code is the glue program passed with python -c.
		Code string
		// CodeLabel names the glue program in rendered command lines.
		CodeLabel string
		// Payload is marshaled to JSON and written to the child's stdin.
		Payload any
		// Overlay is applied over the host environment.
		Overlay map[string]string
	}

	// UVRuntime launches children with `uv run --no-project`.
	UVRuntime struct {
		// Binary is the uv executable name or path.
		Binary string
		// Quiet adds -q --no-progress so uv's own chatter stays off stderr.
		Quiet bool
		// Python forces an interpreter request for every launch.
		Python string
		// MaxOutputBytes caps each captured stream.
		MaxOutputBytes int64
		// Env builds the child environment. When nil, the host environment is used.
		Env *EnvBuilder
		// WaitDelay bounds how long pipes may stay open after the child is killed.
		WaitDelay time.Duration
	}
)

// NewUVRuntime creates a UVRuntime with default settings.
func NewUVRuntime() *UVRuntime {
	return &UVRuntime{
		Binary:         DefaultBinary,
		Quiet:          true,
		MaxOutputBytes: DefaultMaxOutputBytes,
		Env:            NewEnvBuilder(),
		WaitDelay:      defaultWaitDelay,
	}
}

// Name returns the runtime name.
func (r *UVRuntime) Name() string {
	return "uv"
}

// Available reports whether the uv binary can be found.
func (r *UVRuntime) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Args returns the arguments passed to the uv binary.
func (r *UVRuntime) Args(req LaunchRequest) []string {
	args := []string{"run", "--no-project"}
	if r.Quiet {
		args = append(args, "-q", "--no-progress")
	}
	if python := r.python(req); python != "" {
		args = append(args, "--python", python)
	}
	for _, dep := range req.Dependencies {
		args = append(args, "--with", dep)
	}
	return append(args, "python", "-c", req.Code)
}

// Describe renders the command as a shell-quoted line. The glue code is
// replaced by its label.
func (r *UVRuntime) Describe(req LaunchRequest) string {
	args := r.Args(req)
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(r.binary()))
	for _, arg := range args[:len(args)-1] {
		parts = append(parts, quote(arg))
	}
	label := req.CodeLabel
	if label == "" {
		label = "glue"
	}
	parts = append(parts, "<"+label+">")
	return strings.Join(parts, " ")
}

// Launch runs the child and waits for it. A non-zero exit, a start failure
// or an expired deadline returns a *LaunchError alongside the partial Result.
func (r *UVRuntime) Launch(ctx context.Context, req LaunchRequest) (*Result, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	stdout := newCappedBuffer(r.MaxOutputBytes)
	stderr := newCappedBuffer(r.MaxOutputBytes)

	cmd := exec.CommandContext(ctx, r.binary(), r.Args(req)...)
	cmd.Env = EnvToSlice(r.Env.Build(req.Overlay))
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.waitDelay()

	slog.Debug("launching child",
		"script", req.Script,
		"command", r.Describe(req),
		"dependencies", req.Dependencies,
		"secrets", len(req.Overlay))

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Stdout:    strings.TrimSpace(stdout.String()),
		Stderr:    strings.TrimSpace(stderr.String()),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if runErr != nil {
		result.ExitCode = classify(ctx, runErr)
		launchErr := &LaunchError{
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Err:      runErr,
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			launchErr.Err = ctxErr
		}
		slog.Debug("child failed", "script", req.Script, "exit_code", result.ExitCode, "duration", result.Duration, "error", launchErr)
		return result, launchErr
	}

	slog.Debug("child exited", "script", req.Script, "exit_code", result.ExitCode, "duration", result.Duration)
	return result, nil
}

func classify(ctx context.Context, err error) ExitCode {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return ExitInterrupted
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fromProcess(exitErr.ExitCode())
	}
	return ExitStructural
}

func (r *UVRuntime) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *UVRuntime) python(req LaunchRequest) string {
	if r.Python != "" {
		return r.Python
	}
	return req.Python
}

func (r *UVRuntime) waitDelay() time.Duration {
	if r.WaitDelay <= 0 {
		return defaultWaitDelay
	}
	return r.WaitDelay
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return q
}
