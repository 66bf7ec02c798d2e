package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client := ctx.dialClient(cmd.Context())
			if client == nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
				fmt.Fprintln(out, renderStatusLine("Backup", statusInfo, yesNo(cfg.Backup.Enabled), colorize))
				fmt.Fprintln(out, renderStatusLine("Transcription", statusInfo, yesNo(cfg.TranscriptionConfigured()), colorize))
				return nil
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running", colorize))
			fmt.Fprintln(out, renderStatusLine("Queue DB", statusInfo, status.QueueDBPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			failedKind := statusOK
			if status.Queue.Failed > 0 {
				failedKind = statusError
			}
			fmt.Fprintln(out, renderStatusLine("Waiting", statusInfo, fmt.Sprintf("%d", status.Queue.Waiting), colorize))
			fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, fmt.Sprintf("%d", status.Queue.Processing), colorize))
			fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", status.Queue.Failed), colorize))
			fmt.Fprintln(out, renderStatusLine("Completed", statusOK, fmt.Sprintf("%d", status.Queue.Completed), colorize))
			fmt.Fprintln(out, renderStatusLine("Backup", statusInfo, yesNo(cfg.Backup.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Transcription", statusInfo, yesNo(cfg.TranscriptionConfigured()), colorize))
			return nil
		},
	}
}
