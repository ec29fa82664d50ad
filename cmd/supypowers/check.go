// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/supypowers/supypowers/internal/app/inventory"

	"github.com/spf13/cobra"
)

func newCheckCommand(app *App) *cobra.Command {
	var secretArgs []string

	cmd := &cobra.Command{
		Use:   "check <script:function> <input_data>",
		Short: "Validate input_data against a function's input schema without running it",
		Long: `Introspect the script, find the function and validate input_data against
its input schema. The function itself is never called.`,
		Example: `  supypowers . check hello:hello "{'name': 'Ada'}"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := app.requireFolder()
			if err != nil {
				return err
			}
			collector := inventory.NewCollector(
				app.NewLauncher(app.cfg),
				inventory.WithTimeout(app.cfg.Execution.Timeout),
				inventory.WithStrictInput(app.cfg.Input.Strict),
			)
			return app.finish(collector.Check(cmd.Context(), inventory.CheckRequest{
				Folder:    folder,
				Target:    args[0],
				InputData: args[1],
				Secrets:   secretArgs,
			}))
		},
	}

	cmd.Flags().StringArrayVar(&secretArgs, "secrets", nil, "secrets as a .env path or inline KEY=VAL (repeatable)")
	return cmd
}
