package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/internal/server"
	"github.com/matzehuels/flowchart/pkg/config"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP and websocket API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Long: `Run the HTTP and websocket server.

Endpoints:
  POST /v1/arrange   arrange nodes and route connectors
  POST /v1/route     route connectors for nodes that already have positions
  GET  /v1/live      websocket editing session
  GET  /healthz      liveness and build info
  GET  /metrics      Prometheus metrics

When --config is given the file is watched and layout defaults are reloaded
on every save. Cache and listen settings apply at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loader, err := config.NewLoader(c.configPath, c.Logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if c.configPath != "" {
				stop, err := loader.Watch()
				if err != nil {
					return err
				}
				defer stop()
			}

			cfg := loader.Config()
			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			metrics := server.NewMetrics(prometheus.DefaultRegisterer)
			metrics.Register()

			srv := server.New(runner, server.Options{
				Logger:         c.Logger,
				Defaults:       serverDefaults(loader),
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Metrics:        metrics,
			})

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", config.DefaultAddr, "listen address")

	return cmd
}

// serverDefaults reads the loader's current options on every request so
// config reloads take effect without a restart.
func serverDefaults(loader *config.Loader) func() pipeline.Options {
	return func() pipeline.Options {
		opts, err := loader.Config().PipelineOptions()
		if err != nil {
			return pipeline.Options{}
		}
		return opts
	}
}
