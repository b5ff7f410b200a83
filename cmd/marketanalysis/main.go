package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "marketanalysis"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Discretionary price-action analysis engine",
		Version: version,
		Long: `marketanalysis fetches OHLC bars, derives swing pivots and Fibonacci
levels, runs multi-timeframe workflow validation, and backtests or
walk-forward optimizes trading rules against historical data.`,
	}

	rootCmd.PersistentFlags().String("providers", "configs/providers.yaml", "Path to the provider roster YAML file")
	rootCmd.PersistentFlags().String("postgres-dsn", "", "Postgres DSN for bar persistence (optional)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newOptimizeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
