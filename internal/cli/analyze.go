package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/pipeline"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	inputURL    string
	inputFile   string
	jsonStdout  bool
	timeout     time.Duration
	userAgent   string
	noCache     bool
	noLookup    bool
	checkLinks  bool
	noFooter    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Analyze a passage, a question or an article URL",
	Long: `Analyze runs the full engine over one input:
- Split the text into sentences and extract checkable claims
- Score each claim for specificity and verifiability
- Triangulate claims against mainstream, academic and alternative sources
- Detect rhetorical intent and manipulation patterns
- Produce objectivity, reliability and PR/propaganda scores with a verdict

Input comes from the arguments, --file (use - for stdin) or --url.

Example:
  newsintel analyze "Do aliens exist?"
  newsintel analyze --url https://example.com/story --md report.md
  cat article.txt | newsintel analyze --file - --json report.json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVar(&inputURL, "url", "", "fetch and analyze an article URL")
	analyzeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "read input text from a file (- for stdin)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&jsonStdout, "print-json", false, "print the JSON report to stdout instead of the summary")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	addEngineFlags(analyzeCmd)
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

// addEngineFlags registers the flags shared by analyze, batch and serve
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&userAgent, "ua", model.DefaultUserAgent, "HTTP User-Agent")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	cmd.Flags().BoolVar(&noLookup, "no-lookup", false, "skip live reference lookups (guidance entries only)")
	cmd.Flags().BoolVar(&checkLinks, "check-links", false, "HEAD-check live reference links")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// applyEngineFlags copies explicitly set flags over the loaded config
func applyEngineFlags(cmd *cobra.Command, c *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("ua") {
		c.HTTP.UserAgent = userAgent
	}
	if flags.Changed("no-cache") {
		c.Cache.Enabled = !noCache
	}
	if flags.Changed("no-lookup") {
		c.Lookup.Enabled = !noLookup
	}
	if flags.Changed("check-links") {
		c.Lookup.CheckLinks = checkLinks
	}
	if flags.Changed("insecure") {
		c.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("http-proxy") {
		c.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		c.HTTP.HTTPSProxy = httpsProxy
	}
	if flags.Changed("no-footer") {
		c.Output.IncludeFooter = !noFooter
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	applyEngineFlags(cmd, cfg)

	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		stderrf("Timeout: %v\n", timeout)
		stderrf("Live lookups: %v\n", cfg.Lookup.Enabled)
		stderrf("Cache: %v\n\n", cfg.Cache.Enabled)
	}

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		return err
	}

	var report *model.AnalysisReport
	if inputURL != "" {
		if cfg.Output.Verbose {
			stderrf("⚙️  Fetching %s...\n", inputURL)
		}
		report, err = engine.AnalyzeURL(ctx, inputURL)
	} else {
		report, err = engine.Analyze(ctx, input)
	}
	if err != nil {
		return eris.Wrap(err, "analysis failed")
	}

	if cfg.Output.Verbose {
		stderrf("✓ Extracted %d claim(s)\n", len(report.Claims))
		stderrf("✓ Intent: %s (%d%%), %d pattern flag(s)\n", report.Intent.Dominant, report.Intent.Confidence, len(report.Intent.Flags))
		stderrf("✓ Risk: %s\n\n", report.Scores.Risk)
	}

	return writeReport(cmd.OutOrStdout(), report)
}

// readInput resolves the text input from --file or the arguments
func readInput(stdin io.Reader, args []string) (string, error) {
	switch {
	case inputURL != "":
		if len(args) > 0 || inputFile != "" {
			return "", eris.New("--url cannot be combined with text arguments or --file")
		}
		if !pipeline.IsURL(inputURL) {
			return "", eris.Errorf("not an absolute http(s) URL: %s", inputURL)
		}
		return "", nil
	case inputFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(data), nil
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", eris.Wrapf(err, "read %s", inputFile)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", eris.New("no input: pass text, --file or --url")
	}
}

func writeReport(stdout io.Writer, report *model.AnalysisReport) error {
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return eris.Wrap(err, "render JSON")
		}
		if cfg.Output.Verbose {
			stderrf("✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return eris.Wrap(err, "render markdown")
		}
		if cfg.Output.Verbose {
			stderrf("✓ Wrote Markdown: %s\n", outMD)
		}
	}

	if jsonStdout {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return renderer.RenderSummary(stdout, report)
}
