package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelvault/internal/apiclient"
	"reelvault/internal/logging"
	"reelvault/internal/queue"
	"reelvault/internal/services/recordstore"
	"reelvault/internal/workflow"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var interviewID int64

	cmd := &cobra.Command{
		Use:   "add <recording>",
		Short: "Queue a recording for archival",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interviewID <= 0 {
				return fmt.Errorf("--interview must be a positive record store identifier")
			}

			return ctx.withQueue(cmd.Context(), func(client *apiclient.Client, store *queue.Store) error {
				var item *queue.Item
				var err error
				if client != nil {
					item, err = client.Add(cmd.Context(), args[0], interviewID)
				} else {
					cfg, cfgErr := ctx.ensureConfig()
					if cfgErr != nil {
						return cfgErr
					}
					intake := workflow.NewIntake(store, recordstore.NewClient(cfg), logging.NewNop())
					item, err = intake.AddRecording(cmd.Context(), args[0], interviewID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s for %s (%s) as item %d\n",
					item.SourceName, item.CandidateName, item.Company, item.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Output will be %s\n", item.OutputName)
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&interviewID, "interview", "i", 0, "Record store interview ID")
	_ = cmd.MarkFlagRequired("interview")
	return cmd
}
