package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yomidocs/yomidoc-go/yomidoc"
)

var (
	batchOutDir  string
	batchWorkers int
	batchInclude []string
	batchExclude []string
)

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Extract text from every PDF in a folder",
	Long: `Extract text from every PDF found under a folder.

Each document is processed independently on a bounded worker pool; a
failed document is reported and does not abort the run.

Examples:
  yomidoc batch ./documents --out ./extracted
  yomidoc batch ./documents --workers 8
  yomidoc batch ./documents --include '**/*.pdf' --exclude 'drafts/**'
`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "Directory for extracted text files (defaults to alongside each PDF)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Worker pool size (overrides config)")
	batchCmd.Flags().StringSliceVar(&batchInclude, "include", nil, "Glob patterns for files to process (overrides config)")
	batchCmd.Flags().StringSliceVar(&batchExclude, "exclude", nil, "Glob patterns for files and folders to skip (overrides config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if batchWorkers > 0 {
		cfg.BatchWorkers = batchWorkers
	}
	if len(batchInclude) > 0 {
		cfg.BatchInclude = batchInclude
	}
	if len(batchExclude) > 0 {
		cfg.BatchExclude = batchExclude
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	batch := yomidoc.NewBatch(cfg, logger)
	report, err := batch.Run(ctx, args[0])
	if err != nil {
		return err
	}

	for _, item := range report.Items {
		if item.Result == nil {
			continue
		}
		out := strings.TrimSuffix(item.Path, filepath.Ext(item.Path)) + ".txt"
		if batchOutDir != "" {
			if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
				return err
			}
			out = filepath.Join(batchOutDir, filepath.Base(out))
		}
		if err := os.WriteFile(out, []byte(item.Result.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
	}

	if batchOutDir != "" {
		summary, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(batchOutDir, "batch_report.json")
		if err := os.WriteFile(path, summary, 0o644); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Batch %s: %d succeeded, %d failed\n",
		report.RunID, report.Succeeded, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d documents failed", report.Failed)
	}
	return nil
}
