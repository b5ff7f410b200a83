package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketanalysis/internal/app"
	"github.com/sawpanic/marketanalysis/internal/backtest"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func newBacktestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest SYMBOL",
		Short: "Replay a symbol bar-by-bar and print trade/metric results",
		Args:  cobra.ExactArgs(1),
		RunE:  runBacktestCmd,
	}
	cmd.Flags().String("higher-tf", string(ohlc.TF1d), "Higher (confirming) timeframe")
	cmd.Flags().String("lower-tf", string(ohlc.TF4h), "Lower (entry) timeframe")
	cmd.Flags().Duration("lookback", 180*24*time.Hour, "How far back from now to replay")
	cmd.Flags().Float64("capital", 10000, "Initial capital")
	cmd.Flags().Float64("risk", 0.01, "Fraction of capital risked per trade")
	return cmd
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	symbol := args[0]
	higherTF, _ := cmd.Flags().GetString("higher-tf")
	lowerTF, _ := cmd.Flags().GetString("lower-tf")
	lookback, _ := cmd.Flags().GetDuration("lookback")
	capital, _ := cmd.Flags().GetFloat64("capital")
	risk, _ := cmd.Flags().GetFloat64("risk")
	providersPath, _ := cmd.Flags().GetString("providers")
	postgresDSN, _ := cmd.Flags().GetString("postgres-dsn")

	a, err := app.Wire(app.Config{ProvidersPath: providersPath, PostgresDSN: postgresDSN}, log.Logger)
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}
	defer a.Close()

	end := time.Now()
	cfg := backtest.Config{
		Symbol:         symbol,
		HigherTF:       ohlc.Timeframe(higherTF),
		LowerTF:        ohlc.Timeframe(lowerTF),
		Start:          end.Add(-lookback),
		End:            end,
		InitialCapital: capital,
		RiskPerTrade:   risk,
		Signals:        backtest.NewSignalsProcessor(5, 2, 0.6, 2.0),
		Simulator:      backtest.NewTradeSimulator(1.0, 2.0, 1.5),
	}

	start := time.Now()
	result, err := a.Engine.Run(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}
	a.Telemetry.RecordBacktest(symbol, time.Since(start), len(result.Trades))

	return printJSON(result)
}
