package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/ticketflow/internal/cli"
	httpAdapter "github.com/aretw0/ticketflow/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the interactive page, the JSON API, server-sent session events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			api := httpAdapter.NewServer(rt.Engine,
				httpAdapter.WithLogger(rt.Logger),
				httpAdapter.WithGatherer(rt.Registry),
			)
			defer api.Close()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
				Handler:           api.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				rt.Logger.Info("Starting ticketflow server", "address", srv.Addr, "store", cfg.Store.Backend)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				rt.Logger.Info("Start shutdown")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					rt.Logger.Warn("Graceful shutdown did not complete", "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				rt.Logger.Info("ticketflow server stopped gracefully")
				return nil
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	bindFlag(serveCmd, "port", "http.port")
}
