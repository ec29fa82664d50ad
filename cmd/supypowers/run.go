// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supypowers/supypowers/internal/app/invoke"
	"github.com/supypowers/supypowers/internal/issue"
	"github.com/supypowers/supypowers/internal/runtime"

	"github.com/spf13/cobra"
)

type runFlags struct {
	secrets     []string
	timeout     time.Duration
	strictInput bool
	dryRun      bool
}

func newRunCommand(app *App) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <script:function> <input_data>",
		Short: "Run a function in a script via `uv run`",
		Long: `Run one function in a fresh uv environment and print its result envelope.

input_data is JSON, or a Python-style literal such as {'name': 'Ada'}
unless strict input is enabled. The script may omit its .py extension.`,
		Example: `  supypowers . run hello:hello '{"name": "Ada"}'
  supypowers . run tools/geo:distance "{'a': [0, 0], 'b': [3, 4]}" --secrets .env`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeoutSet := cmd.Flags().Changed("timeout")
			return app.runRun(cmd.Context(), args[0], args[1], flags, timeoutSet)
		},
	}

	cmd.Flags().StringArrayVar(&flags.secrets, "secrets", nil, "secrets as a .env path or inline KEY=VAL (repeatable)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "kill the child after this duration (default from execution.timeout)")
	cmd.Flags().BoolVar(&flags.strictInput, "strict-input", false, "accept JSON input_data only")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the resolved invocation without running it")
	return cmd
}

func (a *App) runRun(ctx context.Context, target, input string, flags runFlags, timeoutSet bool) error {
	folder, err := a.requireFolder()
	if err != nil {
		return err
	}

	timeout := a.cfg.Execution.Timeout
	if timeoutSet {
		if flags.timeout <= 0 {
			return &ExitError{Code: runtime.ExitStructural, Err: issue.NewErrorContext().
				WithOperation("run").
				WithTarget(target).
				WithSuggestion("Pass a positive duration such as --timeout 30s").
				WithSuggestion("Omit --timeout to use execution.timeout from the configuration").
				Wrap(errors.New("--timeout must be greater than zero")).
				BuildError()}
		}
		timeout = flags.timeout
	}

	svc := invoke.NewService(
		a.NewLauncher(a.cfg),
		invoke.WithTimeout(timeout),
		invoke.WithStrictInput(flags.strictInput || a.cfg.Input.Strict),
	)
	req := invoke.Request{
		Folder:    folder,
		Target:    target,
		InputData: input,
		Secrets:   flags.secrets,
	}

	if flags.dryRun {
		plan, prepErr := svc.Prepare(req)
		if prepErr != nil {
			return a.fail(prepErr)
		}
		_, err = fmt.Fprint(a.stdout, renderPlan(svc.Describe(plan), plan, timeout))
		return err
	}

	return a.finish(svc.Run(ctx, req))
}

// renderPlan formats a dry run report. Secret values are never shown.
func renderPlan(command string, plan *invoke.Plan, timeout time.Duration) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Dry run: "+plan.Script.Display+":"+plan.Function) + "\n\n")

	row := func(label, value string) {
		sb.WriteString("  " + labelStyle.Render(label) + " " + value + "\n")
	}
	row("command", CmdStyle.Render(command))
	row("script", plan.Script.Path)
	row("function", plan.Function)
	row("input", plan.Input)
	row("timeout", timeout.String())
	if len(plan.Metadata.Dependencies) > 0 {
		row("deps", strings.Join(plan.Metadata.Dependencies, ", "))
	}
	if keys := plan.Overlay.Keys(); len(keys) > 0 {
		row("env", strings.Join(keys, ", "))
	} else {
		row("env", SubtitleStyle.Render("(none)"))
	}
	return sb.String()
}
