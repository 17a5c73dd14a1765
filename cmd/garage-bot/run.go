package main

import (
	"fmt"

	"github.com/futig/garage-bot/internal/builder"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	Long: `Start the Telegram bot and, when HTTP_ENABLED is set, the ops server
with /health and the webhook endpoint. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := builder.Build(environment)
		if err != nil {
			return fmt.Errorf("failed to build application: %w", err)
		}
		return app.Run()
	},
}
