package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/newsintel/internal/pipeline"
	"github.com/ppiankov/newsintel/internal/worker"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many inputs from a file in parallel",
	Long: `Batch analyzes one input per line:
- Each non-empty line that is not a '#' comment is one input
- Lines that are http(s) URLs are fetched as articles, anything else is text
- Inputs run in parallel on a worker pool
- Each input gets its own JSON and Markdown report

Example:
  newsintel batch inputs.txt
  newsintel batch inputs.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./newsintel-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	addEngineFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	applyEngineFlags(cmd, cfg)
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.BatchWorkers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderrf("\n")
	stderrf("═══════════════════════════════════════════════════════════\n")
	stderrf("  NewsIntel Batch Analysis\n")
	stderrf("═══════════════════════════════════════════════════════════\n")
	stderrf("\n")
	stderrf("  Input file:   %s\n", file)
	stderrf("  Workers:      %d\n", concurrency)
	stderrf("  Output dir:   %s\n", outputDir)
	stderrf("  Timeout:      %v\n", batchTimeout)
	stderrf("\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return eris.Wrap(err, "create output directory")
	}

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		return err
	}
	processor := worker.NewBatchProcessor(engine, concurrency)

	stderrf("⚙️  Analyzing inputs with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return eris.Wrap(err, "process file")
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount, failureCount := 0, 0
	for _, result := range results {
		label := shorten(result.Source, 60)
		if result.Error != nil {
			failureCount++
			stderrf("✗ %s: %v\n", label, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Report.Topic))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			stderrf("✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			stderrf("✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}

		successCount++
		stderrf("✓ %s (%s, risk: %s, %v)\n", label, result.Report.Verdict, result.Report.Scores.Risk, result.Duration.Round(time.Millisecond))
	}

	stderrf("\n")
	stderrf("═══════════════════════════════════════════════════════════\n")
	stderrf("  Batch Complete\n")
	stderrf("═══════════════════════════════════════════════════════════\n")
	stderrf("\n")
	stderrf("  Total:     %d inputs\n", len(results))
	stderrf("  Success:   %d\n", successCount)
	stderrf("  Failures:  %d\n", failureCount)
	stderrf("  Output:    %s\n", outputDir)
	stderrf("\n")

	if failureCount > 0 && successCount == 0 {
		return eris.Errorf("all %d inputs failed", failureCount)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename turns a topic into a short, portable file name
func sanitizeFilename(s string) string {
	s = strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(s), "-"), "-.")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-.")
	}
	if s == "" {
		return "report"
	}
	return s
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
