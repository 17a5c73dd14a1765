package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/futig/garage-bot/internal/builder"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/futig/garage-bot/internal/pkg/formatter"
	"github.com/futig/garage-bot/internal/pricing"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
)

var (
	quoteTimeout time.Duration
	summaryPath  string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <variant> <answers.yaml>",
	Short: "Price a set of answers with the pricing engine",
	Long: `Replay the answers through the dialog variant, send the request to the
pricing engine configured for --env and print the price. With ENABLE_MOCKS
set the built-in mock engine is used.

--summary writes the answers and the price as .md, .pdf or .docx. PDF output
embeds SUMMARY_FONT_PATH (or a DejaVu Sans found on the system) for Cyrillic
text. DOCX output needs a unidoc metered key in SUMMARY_UNIDOC_LICENSE_KEY.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := builder.BuildPricing(environment)
		if err != nil {
			return err
		}
		defer func() { _ = p.Logger.Sync() }()

		if variantsDir != "" {
			if p.Variants, err = flow.LoadRegistry(variantsDir); err != nil {
				return err
			}
		}

		v, values, err := replay(p.Variants, args[0], args[1])
		if err != nil {
			return err
		}

		req, err := v.Payload(values)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctxzap.ToContext(context.Background(), p.Logger), quoteTimeout)
		defer cancel()

		result, err := p.Pricing.Fetch(ctx, req)
		if err != nil {
			return fmt.Errorf("pricing failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render(v.Title), dimStyle.Render("("+v.Name+")"))
		fmt.Fprintf(out, "Стоимость: %s\n", priceStyle.Render(pricing.FormatPrice(result.Price)))
		if result.HasDocument() {
			fmt.Fprintf(out, "КП: %s\n", result.DocumentRef)
		}

		if summaryPath != "" {
			if err := writeSummary(summaryPath, p.Config.SummaryCfg.UnidocLicenseKey, v, values, result.Price); err != nil {
				return err
			}
			fmt.Fprintf(out, "Сводка: %s\n", summaryPath)
		}

		return nil
	},
}

func init() {
	quoteCmd.Flags().DurationVar(&quoteTimeout, "timeout", 2*time.Minute, "Pricing request timeout")
	quoteCmd.Flags().StringVar(&summaryPath, "summary", "", "Write a summary of answers and price (.md, .pdf, or .docx with SUMMARY_UNIDOC_LICENSE_KEY)")
}

func writeSummary(path, docxLicenseKey string, v *flow.Variant, values flow.Values, price float64) error {
	f, err := formatter.NewFactory(docxLicenseKey).ForPath(path)
	if err != nil {
		return err
	}

	summary := &formatter.Summary{
		Title: v.Title,
		Total: pricing.FormatPrice(price),
	}
	for _, slot := range v.Slots {
		if val, ok := values[slot.Key]; ok {
			summary.Lines = append(summary.Lines, formatter.Line{Label: slot.Label(), Value: val.Display()})
		}
	}

	data, err := f.Format(summary)
	if err != nil {
		return fmt.Errorf("format summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
