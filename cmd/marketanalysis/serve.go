package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketanalysis/internal/app"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Starts the HTTP server exposing acquisition, analysis, workflow, and backtest endpoints plus /metrics",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	cmd.Flags().String("port", "8080", "HTTP server port")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetString("port")
	providersPath, _ := cmd.Flags().GetString("providers")
	postgresDSN, _ := cmd.Flags().GetString("postgres-dsn")

	a, err := app.Wire(app.Config{ProvidersPath: providersPath, PostgresDSN: postgresDSN}, log.Logger)
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}
	defer a.Close()

	addr := fmt.Sprintf("%s:%s", host, port)
	a.Router.Handle("/metrics", a.Telemetry.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("market analysis server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}

	log.Info().Msg("server shutdown complete")
	return nil
}
