package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelvault/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if client := ctx.dialClient(cmd.Context()); client != nil {
				sent, message, err := client.TestNotification(cmd.Context())
				if err != nil {
					return err
				}
				if !sent {
					fmt.Fprintln(out, message)
					return nil
				}
				fmt.Fprintln(out, "Test notification sent")
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "ntfy topic not configured")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
