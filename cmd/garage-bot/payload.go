package main

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/spf13/cobra"
)

var payloadCmd = &cobra.Command{
	Use:   "payload <variant> <answers.yaml>",
	Short: "Print the pricing engine request for a set of answers",
	Long: `Replay the answers through the dialog variant and print the JSON body
that would be sent to the pricing engine. Nothing is sent.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := flow.LoadRegistry(variantsDir)
		if err != nil {
			return err
		}

		v, values, err := replay(registry, args[0], args[1])
		if err != nil {
			return err
		}

		req, err := v.Payload(values)
		if err != nil {
			return err
		}

		body, err := sonic.MarshalIndent(req, "", "  ")
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}
