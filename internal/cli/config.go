package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configDirName is the directory under $HOME holding config.yaml
const configDirName = ".newsintel"

// LoadConfig resolves the effective configuration: flags bound to v, then
// NEWSINTEL_* environment variables, then the config file, then defaults.
// A missing default config file is not an error; a missing explicit one is.
func LoadConfig(v *viper.Viper, file string) (*model.Config, error) {
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, eris.Wrap(err, "config: marshal defaults")
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, eris.Wrap(err, "config: load defaults")
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, eris.Wrapf(err, "config: read %s", file)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, configDirName))
		v.SetConfigName("config")
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, eris.Wrap(err, "config: read file")
			}
		}
	}

	v.SetEnvPrefix("NEWSINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage NewsIntel configuration",
	Long: `Manage NewsIntel configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (NEWSINTEL_*, e.g. NEWSINTEL_LOOKUP_TIMEOUT=5s)
3. Config file (~/.newsintel/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := viper.ConfigFileUsed(); used != "" {
			stderrf("Configuration file: %s\n\n", used)
		} else {
			stderrf("No configuration file found (using defaults)\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Effective Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  `Create ~/.newsintel/config.yaml (or the --config path) containing every option at its default value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return eris.Wrap(err, "find home directory")
			}
			path = filepath.Join(home, configDirName, "config.yaml")
		}

		if err := WriteDefaultConfig(path, configInitForce); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
		fmt.Fprintf(out, "\nTo view the effective configuration:\n  newsintel config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file:\n  $EDITOR %s\n\n", path)
		return nil
	},
}

// WriteDefaultConfig writes a commented default config file to path
func WriteDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return eris.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create config directory")
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return eris.Wrap(err, "marshal config")
	}

	var b bytes.Buffer
	b.WriteString("# NewsIntel configuration\n")
	b.WriteString("#\n")
	b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	b.WriteString("#   1. CLI flags\n")
	b.WriteString("#   2. Environment variables (NEWSINTEL_<SECTION>_<KEY>)\n")
	b.WriteString("#   3. This config file\n")
	b.WriteString("#   4. Built-in defaults\n")
	b.WriteString("#\n")
	b.WriteString("# lexicon_file may point at a YAML file overriding sections of the\n")
	b.WriteString("# built-in cue tables (intent, patterns, hedges, attribution, ...).\n\n")
	b.Write(data)

	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "write config")
	}
	return nil
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
