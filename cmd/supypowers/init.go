// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/runtime"

	"github.com/spf13/cobra"
)

const starterDir = "supypowers"

var (
	//go:embed templates/hello.py
	helloPy []byte

	//go:embed templates/hello.md
	helloMD []byte
)

type initResult struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error,omitempty"`
	Hint    string   `json:"hint,omitempty"`
	Created []string `json:"created,omitempty"`
}

func newInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a supypowers folder with starter templates",
		Long: `Create supypowers/hello.py and supypowers/hello.md inside the folder.

Existing files are left untouched unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.runInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing supypowers/hello.py and supypowers/hello.md")
	return cmd
}

func (a *App) runInit(force bool) error {
	folder, err := a.requireFolder()
	if err != nil {
		return err
	}
	if _, err = discovery.ResolveFolder(folder); err != nil {
		return a.fail(err)
	}

	dir, err := filepath.Abs(filepath.Join(folder, starterDir))
	if err != nil {
		return a.fail(err)
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return a.fail(err)
	}

	files := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(dir, "hello.py"), helloPy},
		{filepath.Join(dir, "hello.md"), helloMD},
	}

	if !force {
		for _, f := range files {
			if _, statErr := os.Stat(f.path); statErr == nil {
				if err = a.writeJSON(initResult{
					Error: fmt.Sprintf("refusing to overwrite existing file: %s", f.path),
					Hint:  "re-run with --force to overwrite",
				}); err != nil {
					return err
				}
				return &ExitError{Code: runtime.ExitStructural, Reported: true}
			}
		}
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		if err = os.WriteFile(f.path, f.content, 0o644); err != nil {
			return a.fail(fmt.Errorf("failed to write %s: %w", f.path, err))
		}
		created = append(created, f.path)
	}
	return a.writeJSON(initResult{OK: true, Created: created})
}
