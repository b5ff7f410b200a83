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

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize SYMBOL",
		Short: "Walk-forward optimize confluence threshold and ATR stop multiplier",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	cmd.Flags().String("higher-tf", string(ohlc.TF1d), "Higher (confirming) timeframe")
	cmd.Flags().String("lower-tf", string(ohlc.TF4h), "Lower (entry) timeframe")
	cmd.Flags().Duration("lookback", 365*24*time.Hour, "How far back from now to optimize over")
	cmd.Flags().Int("in-sample-months", 6, "In-sample window length, in months")
	cmd.Flags().Int("out-of-sample-months", 2, "Out-of-sample window length, in months")
	cmd.Flags().String("target", "sharpe", "Optimization target: sharpe, profit_factor, average_r, calmar, sortino")
	cmd.Flags().Float64("capital", 10000, "Initial capital")
	cmd.Flags().Float64("risk", 0.01, "Fraction of capital risked per trade")
	return cmd
}

func runOptimize(cmd *cobra.Command, args []string) error {
	symbol := args[0]
	higherTF, _ := cmd.Flags().GetString("higher-tf")
	lowerTF, _ := cmd.Flags().GetString("lower-tf")
	lookback, _ := cmd.Flags().GetDuration("lookback")
	inSample, _ := cmd.Flags().GetInt("in-sample-months")
	outOfSample, _ := cmd.Flags().GetInt("out-of-sample-months")
	target, _ := cmd.Flags().GetString("target")
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
	cfg := backtest.OptimizationConfig{
		Symbol:            symbol,
		HigherTF:          ohlc.Timeframe(higherTF),
		LowerTF:           ohlc.Timeframe(lowerTF),
		Start:             end.Add(-lookback),
		End:               end,
		InSampleMonths:    inSample,
		OutOfSampleMonths: outOfSample,
		Parameters: []backtest.OptimizationParameter{
			{Name: "confluence_threshold", Min: 1, Max: 4, Step: 1},
			{Name: "atr_stop_multiplier", Min: 1.0, Max: 3.0, Step: 0.5},
		},
		OptimizationTarget: target,
		InitialCapital:     capital,
		RiskPerTrade:       risk,
		Build: func(params map[string]float64) (*backtest.SignalsProcessor, *backtest.TradeSimulator) {
			return backtest.NewSignalsProcessor(5, int(params["confluence_threshold"]), 0.6, params["atr_stop_multiplier"]),
				backtest.NewTradeSimulator(1.0, 2.0, 1.5)
		},
	}

	start := time.Now()
	result, err := a.Optimizer.Optimize(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("run optimization: %w", err)
	}
	a.Telemetry.RecordOptimize(time.Since(start))

	return printJSON(result)
}
