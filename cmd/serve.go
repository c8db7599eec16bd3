package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/loanlens-cli/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and prediction API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		addr := cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		dataDir := cfg.DataDir
		if serveDataDir != "" {
			dataDir = serveDataDir
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(newService(serviceOptions()), server.Options{
			Addr:           addr,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			DataDir:        dataDir,
			TrustProxy:     cfg.TrustProxy,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config http_addr)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "directory request paths may read from (overrides config data_dir; empty disables path overrides)")
}
