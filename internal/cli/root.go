package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/newsintel/internal/logging"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	cfg     *model.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsintel",
	Short: "NewsIntel - explainable news and claim analysis (non-normative)",
	Long: `NewsIntel turns a passage of text, a question or an article URL into an
intelligence-style report: extracted claims, verifiability, triangulated
references, rhetorical intent, manipulation patterns and risk scores.

Every score is a deterministic function of cues found in the input or of
reference lookups. NewsIntel measures support and framing, not truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		if verbose && loaded.Log.Level == "warn" {
			loaded.Log.Level = "info"
		}
		loaded.Output.Verbose = loaded.Output.Verbose || verbose
		cfg = loaded
		return logging.Init(cfg.Log)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of NewsIntel.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsintel v%s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.newsintel/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// stderrf prints progress lines; reports go to stdout
func stderrf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
}
