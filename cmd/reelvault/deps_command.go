package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelvault/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 4)
			missingRequired := false
			for _, status := range deps.Check(cfg) {
				state := "ok"
				if !status.Available {
					state = status.Detail
					if !status.Optional {
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, yesNo(!status.Optional), state})
			}

			table := renderTable(
				[]string{"Dependency", "Command", "Required", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if missingRequired {
				return fmt.Errorf("required dependencies are missing")
			}
			return nil
		},
	}
}
