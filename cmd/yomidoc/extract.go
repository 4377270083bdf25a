package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yomidocs/yomidoc-go/yomidoc"
)

var (
	extractOutput  string
	extractReports string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract text from a single PDF",
	Long: `Extract text from a single PDF document.

Examples:
  # Extract to stdout
  yomidoc extract report.pdf

  # Write the text and a JSON report bundle
  yomidoc extract report.pdf --output report.txt --reports report.json

  # Custom pipeline configuration
  yomidoc extract report.pdf --config yomidoc.yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write extracted text to this file instead of stdout")
	extractCmd.Flags().StringVarP(&extractReports, "reports", "r", "", "Write the quality/verification reports as JSON to this file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	extractor := yomidoc.NewExtractor(cfg, yomidoc.WithLogger(logger))
	result, err := extractor.Extract(ctx, args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, []byte(result.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Println(result.Text)
	}

	if extractReports != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(extractReports, data, 0o644); err != nil {
			return fmt.Errorf("failed to write reports: %w", err)
		}
	}

	result.Quality.PrintTo(os.Stderr)
	if !result.Verification.Passed && cfg.VerifyOutput {
		fmt.Fprintf(os.Stderr, "Verification FAILED: %d issues, %d warnings\n",
			len(result.Verification.Issues), len(result.Verification.Warnings))
	}
	return nil
}
