// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/supypowers/supypowers/internal/app/invoke"
	"github.com/supypowers/supypowers/internal/config"
	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/issue"
	"github.com/supypowers/supypowers/internal/protocol"
	"github.com/supypowers/supypowers/internal/render"
	"github.com/supypowers/supypowers/internal/runtime"
	"github.com/supypowers/supypowers/internal/secrets"

	"github.com/charmbracelet/fang"
)

// writeJSON prints v as one JSON line on stdout.
func (a *App) writeJSON(v any) error {
	line, err := render.JSON(v)
	if err != nil {
		return &ExitError{Code: runtime.ExitStructural, Err: fmt.Errorf("failed to encode result: %w", err)}
	}
	_, err = fmt.Fprintln(a.stdout, line)
	return err
}

// finish prints an outcome and converts it into the command's exit status.
func (a *App) finish(out *invoke.Outcome) error {
	if out.Stderr != "" {
		fmt.Fprint(a.stderr, out.Stderr)
		if !strings.HasSuffix(out.Stderr, "\n") {
			fmt.Fprintln(a.stderr)
		}
	}
	if err := a.writeJSON(out.Result); err != nil {
		return err
	}
	if out.ExitCode.IsSuccess() {
		return nil
	}
	if out.Err != nil {
		slog.Debug("command failed", "exit_code", out.ExitCode, "error", out.Err)
		if a.verbose {
			a.renderIssue(out.Err)
		}
	}
	return &ExitError{Code: out.ExitCode, Err: out.Err, Reported: true}
}

// fail prints err as a pre-launch failure result.
func (a *App) fail(err error) error {
	return a.finish(invoke.Structural(err))
}

// handleError replaces fang's default handler so results already printed as
// JSON are not repeated on stderr.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	if exitErr.Reported || exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(exitErr.Err, a.verbose))
	if a.verbose {
		a.renderIssue(exitErr.Err)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog guidance matching err, if any.
func (a *App) renderIssue(err error) {
	id, ok := issueFor(err)
	if !ok {
		return
	}
	style := string(config.ColorSchemeAuto)
	if a.cfg != nil {
		style = string(a.cfg.UI.ColorScheme)
	}
	rendered, renderErr := issue.Get(id).Render(style)
	if renderErr != nil {
		slog.Debug("could not render issue", "id", id, "error", renderErr)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// issueFor maps an error chain to the most specific catalog entry.
func issueFor(err error) (issue.Id, bool) {
	if id, ok := issue.IssueOf(err); ok {
		return id, true
	}
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, runtime.ErrUVNotFound):
		return issue.UVNotFoundId, true
	case errors.Is(err, context.DeadlineExceeded):
		return issue.TimeoutExceededId, true
	case errors.Is(err, discovery.ErrFolderNotFound):
		return issue.FolderNotFoundId, true
	case errors.Is(err, discovery.ErrScriptNotFound):
		return issue.ScriptNotFoundId, true
	case errors.Is(err, secrets.ErrInvalidSecretSpec):
		return issue.InvalidSecretsId, true
	case errors.Is(err, protocol.ErrEnvelopeDecode):
		return issue.RunnerProtocolBrokenId, true
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrConfigFileNotFound):
		return issue.ConfigLoadFailedId, true
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.Is(err, runtime.ErrLaunchFailed):
		return issue.LaunchFailedId, true
	default:
		return 0, false
	}
}
