// reference-probe runs every live lookup backend for one query and prints
// what each bucket returns, to diagnose endpoints, proxies and rate limits.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/newsintel/internal/logging"
	"github.com/ppiankov/newsintel/internal/lookup"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/validate"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

func main() {
	var (
		timeout    time.Duration
		maxResults int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:          "reference-probe <query...>",
		Short:        "Query each live reference backend and print the hits",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Init(model.LogConfig{Level: logLevel, Format: "console"}); err != nil {
				return err
			}

			cfg := model.DefaultConfig()
			cfg.Lookup.MaxResults = maxResults
			cfg.Lookup.Timeout = timeout
			return probe(cmd.Context(), cfg, strings.Join(args, " "))
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-backend timeout")
	cmd.Flags().IntVar(&maxResults, "max", 5, "results per backend")
	cmd.Flags().StringVar(&logLevel, "log-level", "debug", "log level")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func probe(ctx context.Context, cfg *model.Config, query string) error {
	live := lookup.NewLive(cfg, nil)
	authority := validate.NewAuthorityClassifier(&cfg.Authority)

	fmt.Printf("=== Reference probe: %q ===\n\n", query)
	failures := 0
	for _, bucket := range model.Buckets {
		fmt.Printf("[%s]\n", bucket)
		fmt.Println(strings.Repeat("-", 60))

		lctx, cancel := context.WithTimeout(ctx, cfg.Lookup.Timeout)
		start := time.Now()
		results, err := live.Lookup(lctx, query, bucket)
		cancel()

		if err != nil {
			failures++
			fmt.Printf("  ✗ %s after %v: %v\n\n", lookup.Reason(err), time.Since(start).Round(time.Millisecond), err)
			continue
		}
		fmt.Printf("  ✓ %d result(s) in %v\n", len(results), time.Since(start).Round(time.Millisecond))
		for i, r := range results {
			fmt.Printf("  %d. %s\n", i+1, r.Title)
			fmt.Printf("     %s [%s]\n", r.SourceID, authority.Classify(r.SourceID))
			if r.Summary != "" {
				fmt.Printf("     %s\n", r.Summary)
			}
		}
		fmt.Println()
	}

	if failures == len(model.Buckets) {
		return eris.Errorf("all %d backends failed", failures)
	}
	return nil
}
