package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/store"
	"github.com/meshcast/meshcast/internal/webapi"
	"github.com/meshcast/meshcast/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		host   string
		port   int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the forecast HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /api/health      Liveness and version
  POST /api/predict     Popularity forecast with quality rating
  POST /api/quality     Quality rating only
  POST /api/popularity  Popularity estimate only
  GET  /api/model-info  Training metrics and active strategies
  GET  /api/runs        Stored batch runs (requires --db)
  GET  /api/runs/{id}   Summary of one stored run (requires --db)

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}
			svc, err := loadService(ctx, cfg)
			if err != nil {
				return err
			}

			var runs webapi.RunStore
			if dbPath != "" {
				s, err := store.Open(ctx, dbPath)
				if err != nil {
					return err
				}
				defer s.Close() //nolint:errcheck
				runs = s
			}

			srv, err := webserver.New(webserver.Config{
				Host:           host,
				Port:           port,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         slog.Default(),
			}, svc, runs)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Interface to listen on")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config, 8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database of batch runs to expose")

	return cmd
}
