// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/supypowers/supypowers/internal/app/inventory"
	"github.com/supypowers/supypowers/internal/app/invoke"
	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/marker"
	"github.com/supypowers/supypowers/internal/protocol"
	"github.com/supypowers/supypowers/internal/render"
	"github.com/supypowers/supypowers/internal/runtime"
	"github.com/supypowers/supypowers/internal/watch"

	"github.com/spf13/cobra"
)

type docsFlags struct {
	recursive     bool
	format        string
	output        string
	requireMarker bool
	marker        string
	secrets       []string
	render        bool
	watch         bool
}

func newDocsCommand(app *App) *cobra.Command {
	var flags docsFlags

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Emit docs JSON or Markdown for discovered functions",
		Long: `Introspect every script in the folder, one uv child per script, and print
the function inventory. Scripts that cannot be introspected are listed with
an error and no functions.`,
		Example: `  supypowers . docs
  supypowers . docs --recursive --format md --output docs.md
  supypowers . docs --require-marker --render
  supypowers . docs --watch --output docs.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runDocs(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.recursive, "recursive", false, "recurse into subfolders")
	cmd.Flags().StringVar(&flags.format, "format", string(render.FormatJSON), "output format (json or md)")
	cmd.Flags().StringVar(&flags.output, "output", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.requireMarker, "require-marker", false, "only include functions decorated with the marker")
	cmd.Flags().StringVar(&flags.marker, "marker", marker.Default, "decorator name used by --require-marker")
	cmd.Flags().StringArrayVar(&flags.secrets, "secrets", nil, "secrets as a .env path or inline KEY=VAL (repeatable)")
	cmd.Flags().BoolVar(&flags.render, "render", false, "render the Markdown inventory for the terminal (implies --format md)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "regenerate whenever a script changes")
	return cmd
}

func (a *App) runDocs(ctx context.Context, flags docsFlags) error {
	folder, err := a.requireFolder()
	if err != nil {
		return err
	}

	format := render.Format(flags.format)
	if flags.render {
		format = render.FormatMarkdown
	}
	if ok, errs := format.IsValid(); !ok {
		return &ExitError{Code: runtime.ExitStructural, Err: errors.Join(errs...)}
	}

	collector := inventory.NewCollector(
		a.NewLauncher(a.cfg),
		inventory.WithTimeout(a.cfg.Execution.Timeout),
		inventory.WithStrictInput(a.cfg.Input.Strict),
	)
	req := inventory.Request{
		Folder:        folder,
		Recursive:     flags.recursive,
		RequireMarker: flags.requireMarker,
		Marker:        flags.marker,
		Secrets:       flags.secrets,
	}

	if err = a.generateDocs(ctx, collector, req, format, flags); err != nil || !flags.watch {
		return err
	}

	w, err := watch.New(watch.Options{
		Folder:    folder,
		Recursive: flags.recursive,
		OnChange: func(ctx context.Context, changed []string) error {
			slog.Info("scripts changed, regenerating docs", "files", changed)
			return a.generateDocs(ctx, collector, req, format, flags)
		},
	})
	if err != nil {
		return &ExitError{Code: runtime.ExitStructural, Err: err}
	}
	fmt.Fprintln(a.stderr, SubtitleStyle.Render("Watching "+w.Root()+" for changes (Ctrl+C to stop)"))
	return w.Run(ctx)
}

// generateDocs runs one collection pass and writes the rendered inventory.
func (a *App) generateDocs(ctx context.Context, collector *inventory.Collector, req inventory.Request, format render.Format, flags docsFlags) error {
	report, err := collector.Collect(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return a.finish(&invoke.Outcome{
				ExitCode: runtime.ExitInterrupted,
				Result:   protocol.NewFailure(err),
				Err:      err,
			})
		}
		return a.fail(err)
	}
	logDiagnostics(report.Diagnostics)

	out, err := render.Inventory(report.Inventory, format)
	if err != nil {
		return a.fail(err)
	}
	if flags.render {
		out, err = render.Terminal(out, render.TerminalOptions{Style: string(a.cfg.UI.ColorScheme)})
		if err != nil {
			return a.fail(fmt.Errorf("failed to render markdown: %w", err))
		}
	}

	if flags.output != "" {
		if err = os.WriteFile(flags.output, []byte(out+"\n"), 0o644); err != nil {
			return a.fail(fmt.Errorf("failed to write %s: %w", flags.output, err))
		}
		slog.Debug("docs written", "path", flags.output, "scripts", len(report.Inventory))
		return nil
	}
	_, err = fmt.Fprintln(a.stdout, out)
	return err
}

func logDiagnostics(diags []discovery.Diagnostic) {
	for _, d := range diags {
		attrs := []any{"code", d.Code, "path", d.Path}
		if d.Cause != nil {
			attrs = append(attrs, "error", d.Cause)
		}
		if d.Severity == discovery.SeverityError {
			slog.Error(d.Message, attrs...)
			continue
		}
		slog.Warn(d.Message, attrs...)
	}
}
