package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelvault/internal/queue"
)

func newDeletionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deletions",
		Short: "List originals scheduled for deletion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListDeletions(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No deletions scheduled")
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				due := humanize.Time(record.DeleteAfter)
				if record.DeleteAfter.Before(now) {
					due = "due now"
				}
				rows = append(rows, []string{record.Path, due})
			}
			table := renderTable(
				[]string{"Path", "Deletes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
