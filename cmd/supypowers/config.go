// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/supypowers/supypowers/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `supypowers config` command tree. The
// configuration is already loaded by the root command when these run.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage supypowers configuration",
		Long: `Manage supypowers configuration.

Configuration is stored in:
  - Linux: $XDG_CONFIG_HOME/supypowers/config.cue (default ~/.config)
  - macOS: ~/Library/Application Support/supypowers/config.cue
  - Windows: %APPDATA%\supypowers\config.cue

A config.cue in the working directory is used when none exists there, and
SUPYPOWERS_* environment variables override file values
(for example SUPYPOWERS_EXECUTION_TIMEOUT=30s).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, configFilePath(cfgDir))
			return err
		},
	})

	return cfgCmd
}

func (a *App) showConfig() error {
	cfg := a.cfg
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := a.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if src := a.Config.Source(); src != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), src)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	python := valueStyle.Render(cfg.UV.Python)
	if cfg.UV.Python == "" {
		python = SubtitleStyle.Render("(from script metadata)")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("uv"))
	fmt.Fprintf(w, "  binary: %s\n", valueStyle.Render(string(cfg.UV.Binary)))
	fmt.Fprintf(w, "  quiet: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UV.Quiet)))
	fmt.Fprintf(w, "  python: %s\n", python)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("execution"))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Execution.Timeout.String()))
	fmt.Fprintf(w, "  max_output_bytes: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Execution.MaxOutputBytes)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("input"))
	fmt.Fprintf(w, "  strict: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Input.Strict)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func configFilePath(cfgDir string) string {
	return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
}
