// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for supypowers.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/supypowers/supypowers/internal/config"
	"github.com/supypowers/supypowers/internal/runtime"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const folderFlag = "folder"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// commandNames are the first-level words that are never a folder.
	commandNames = []string{
		"init", "run", "docs", "check", "config",
		"help", "completion", "man", "__complete", "__completeNoDesc",
	}

	// valueFlags consume the following argument when written without "=".
	valueFlags = []string{"--config", "--" + folderFlag}
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reads the loaded configuration from it.
	App struct {
		Config      config.Provider
		NewLauncher func(*config.Config) runtime.Launcher
		stdout      io.Writer
		stderr      io.Writer

		cfg     *config.Config
		folder  string
		cfgFile string
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		NewLauncher func(*config.Config) runtime.Launcher
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		NewLauncher: deps.NewLauncher,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewLauncher == nil {
		app.NewLauncher = newUVLauncher
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// Execute runs the CLI with the process arguments and exits with its code.
// This is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs the CLI with the process arguments and returns the exit code.
func Main() int {
	return Run(context.Background(), os.Args[1:], Dependencies{})
}

// Run builds a fresh command tree for args and executes it.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	app := NewApp(deps)
	root := app.newRootCommand()
	root.SetArgs(splitFolder(args))
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	if err == nil {
		return int(runtime.ExitSuccess)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return int(runtime.ExitStructural)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "supypowers [folder] <command>",
		Short: "Run schema-typed Python functions in isolated uv environments",
		Long: TitleStyle.Render("supypowers") + SubtitleStyle.Render(" - run schema-typed Python functions in isolated uv environments") + `

Every invocation starts a fresh ` + "`uv run --no-project`" + ` child with the
dependencies declared in the script's inline metadata block. Results are
written to stdout as a single JSON line.

` + SubtitleStyle.Render("Examples:") + `
  supypowers . init                              Create supypowers/hello.py
  supypowers . run hello:hello '{"name": "Ada"}' Run a function
  supypowers . docs --format md                  Document every function
  supypowers config show                         Show the effective configuration`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initRootConfig(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/supypowers/config.cue)")
	root.PersistentFlags().StringVar(&a.folder, folderFlag, "", "scripts folder (may also be given as the first argument)")
	_ = root.PersistentFlags().MarkHidden(folderFlag)

	root.AddCommand(
		newInitCommand(a),
		newRunCommand(a),
		newDocsCommand(a),
		newCheckCommand(a),
		newConfigCommand(a),
	)
	return root
}

// initRootConfig loads the configuration and installs the process logger.
func (a *App) initRootConfig(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return &ExitError{Code: runtime.ExitStructural, Err: err}
	}
	a.cfg = cfg
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	a.configureLogging()
	slog.Debug("configuration loaded", "source", a.Config.Source(), "timeout", cfg.Execution.Timeout)
	return nil
}

func (a *App) configureLogging() {
	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
}

// requireFolder returns the scripts folder or a usage error when none was given.
func (a *App) requireFolder() (string, error) {
	if a.folder == "" {
		return "", &ExitError{
			Code: runtime.ExitStructural,
			Err:  errors.New("missing folder: usage is supypowers <folder> <command>"),
		}
	}
	return a.folder, nil
}

func newUVLauncher(cfg *config.Config) runtime.Launcher {
	r := runtime.NewUVRuntime()
	r.Binary = string(cfg.UV.Binary)
	r.Quiet = cfg.UV.Quiet
	r.Python = cfg.UV.Python
	r.MaxOutputBytes = cfg.Execution.MaxOutputBytes
	return r
}

// splitFolder rewrites the leading folder positional ("supypowers ./x run")
// into the hidden --folder flag so cobra can route the subcommand.
func splitFolder(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(arg, "-") {
			out = append(out, arg)
			if slices.Contains(valueFlags, arg) && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
			continue
		}
		if slices.Contains(commandNames, arg) {
			return append(out, args[i:]...)
		}
		out = append([]string{"--" + folderFlag + "=" + arg}, out...)
		return append(out, args[i+1:]...)
	}
	return out
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
