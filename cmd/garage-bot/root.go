package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	environment string
	variantsDir string
	version     = "dev"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "garage-bot",
	Short: "Telegram bot that prices garages through a spreadsheet engine",
	Long: `garage-bot walks customers through a garage configuration dialog,
prices it with the spreadsheet pricing engine and answers free-form
questions with a language model.

Quick Start:
  garage-bot run                                  # Start the Telegram bot
  garage-bot variants                             # List dialog variants
  garage-bot payload basic answers.yaml           # Show the pricing request
  garage-bot quote basic answers.yaml             # Price a set of answers`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "Environment, selects the .env.<env> file")
	rootCmd.PersistentFlags().StringVar(&variantsDir, "variants-dir", os.Getenv("FLOW_VARIANTS_DIR"), "Directory with variant overrides")

	rootCmd.AddCommand(runCmd, variantsCmd, payloadCmd, quoteCmd)
}
