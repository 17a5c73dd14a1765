package main

import (
	"fmt"

	"github.com/futig/garage-bot/internal/flow"
	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List dialog variants and their questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := flow.LoadRegistry(variantsDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range registry.Names() {
			v, err := registry.Get(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s  %s\n", nameStyle.Render(v.Name), titleStyle.Render(v.Title))
			for _, s := range v.Slots {
				line := fmt.Sprintf("  %-20s %-8s", s.Key, s.Kind)
				if s.When != nil {
					line += dimStyle.Render(fmt.Sprintf(" when %s", s.When.Slot))
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
		}

		return nil
	},
}
