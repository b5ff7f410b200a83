package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketanalysis/internal/analysis"
	"github.com/sawpanic/marketanalysis/internal/app"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run pivot/fibonacci/signal analysis for one symbol and print JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	cmd.Flags().String("timeframe", string(ohlc.TF1d), "Timeframe to analyze")
	cmd.Flags().Int("periods", 100, "Number of bars to request")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := args[0]
	tf, _ := cmd.Flags().GetString("timeframe")
	periods, _ := cmd.Flags().GetInt("periods")
	providersPath, _ := cmd.Flags().GetString("providers")
	postgresDSN, _ := cmd.Flags().GetString("postgres-dsn")

	a, err := app.Wire(app.Config{ProvidersPath: providersPath, PostgresDSN: postgresDSN}, log.Logger)
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}
	defer a.Close()

	resp := a.Orchestrator.Analyze(cmd.Context(), analysis.Request{
		Symbol:    symbol,
		Timeframe: ohlc.Timeframe(tf),
		Periods:   periods,
		Config:    analysis.DefaultConfig(),
	})

	return printJSON(resp)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
