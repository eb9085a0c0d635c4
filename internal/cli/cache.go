package cli

import (
	"fmt"

	"github.com/ppiankov/newsintel/internal/cache"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lookup result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached lookup result",
	Long: `Clear empties the on-disk lookup cache (cache.disk_dir).
The in-memory cache only lives for one process and needs no clearing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Cache.DiskDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No disk cache configured (cache.disk_dir is empty)")
			return nil
		}

		store := cache.NewDiskCache(cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
		if err := store.Clear(); err != nil {
			return eris.Wrap(err, "clear cache")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared lookup cache: %s\n", cfg.Cache.DiskDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
