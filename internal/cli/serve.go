package cli

import (
	"os/signal"
	"syscall"

	"github.com/ppiankov/newsintel/internal/pipeline"
	"github.com/ppiankov/newsintel/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis engine over HTTP",
	Long: `Serve exposes the engine as a JSON API:

  POST /v1/analyze  {"text": "..."} or {"url": "https://..."}
  POST /v1/batch    {"inputs": ["...", "https://..."]}
  GET  /healthz

Example:
  newsintel serve --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyEngineFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := pipeline.NewEngine(cfg)
		if err != nil {
			return err
		}
		stderrf("NewsIntel API listening on %s\n", cfg.Server.Addr)
		return server.New(engine, cfg.Server, cfg.Concurrency.BatchWorkers).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	addEngineFlags(serveCmd)
}
