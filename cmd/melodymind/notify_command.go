package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/notifications"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	var test bool

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !test {
				return errors.New("nothing to send; use --test to send a test notification")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "Notifications are not configured (set notifications.ntfy_topic).")
				return nil
			}

			service := notifications.NewService(cfg)
			if err := service.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&test, "test", false, "Send a test notification to the configured topic")

	return cmd
}
