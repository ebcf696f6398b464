// cmd/pricescrapexter/serve.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/valpere/PriceScrapexter/internal/api"
	"github.com/valpere/PriceScrapexter/internal/monitoring"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the price scraping HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if serveAddr != "" {
			cfg.Server.Address = serveAddr
		}

		metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{
			Namespace:       cfg.Metrics.Namespace,
			EnableGoMetrics: true,
		})

		p, err := buildPipeline(cfg, logger, metrics)
		if err != nil {
			return err
		}
		defer p.Close()

		health := monitoring.NewHealthManager(version)
		health.RegisterCheck(monitoring.GoroutineHealthCheck(10000))

		opts := []api.Option{
			api.WithLogger(logger),
			api.WithHealth(health),
			api.WithVersion(version),
		}
		if cfg.Metrics.Enabled {
			opts = append(opts, api.WithMetrics(metrics))
		}

		srv := api.NewServer(cfg, p.engine, opts...)
		return srv.ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}
