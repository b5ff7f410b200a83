package backtest

import (
	"context"
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// Config parameterizes one BacktestEngine.run invocation (spec.md §4.7).
type Config struct {
	Symbol         string
	HigherTF       ohlc.Timeframe
	LowerTF        ohlc.Timeframe
	Start          time.Time
	End            time.Time
	InitialCapital float64
	RiskPerTrade   float64
	Signals        *SignalsProcessor
	Simulator      *TradeSimulator
}

// Result is the output of BacktestEngine.run.
type Result struct {
	Trades  []ClosedTrade
	Equity  []EquityPoint
	Metrics Metrics
}

// Engine implements spec.md §4.7's BacktestEngine: a bar-by-bar replay
// over lower-timeframe bars, consulting SignalsProcessor when flat and
// TradeSimulator while a trade is open.
type Engine struct {
	loader *DataLoader
}

// NewEngine builds an Engine over a DataLoader.
func NewEngine(loader *DataLoader) *Engine {
	return &Engine{loader: loader}
}

// Run executes one backtest. Per spec.md §5, bar processing within a run
// is strictly sequential; only window/grid-level parallelism is safe.
func (e *Engine) Run(ctx context.Context, cfg Config) (Result, error) {
	higherBars, err := e.loader.LoadData(ctx, cfg.Symbol, cfg.HigherTF, cfg.Start, cfg.End)
	if err != nil {
		return Result{}, err
	}
	lowerBars, err := e.loader.LoadData(ctx, cfg.Symbol, cfg.LowerTF, cfg.Start, cfg.End)
	if err != nil {
		return Result{}, err
	}
	if len(lowerBars) == 0 {
		return Result{}, nil
	}

	capital := cfg.InitialCapital
	closedPnL := 0.0
	var openTrades []OpenTrade
	var closedTrades []ClosedTrade
	equity := make([]EquityPoint, 0, len(lowerBars))

	for i, bar := range lowerBars {
		select {
		case <-ctx.Done():
			return Result{Trades: closedTrades, Equity: equity, Metrics: ComputeMetrics(closedTrades, equity)}, ctx.Err()
		default:
		}

		var stillOpen []OpenTrade
		for idx := range openTrades {
			trade := openTrades[idx]
			closed, didClose := cfg.Simulator.UpdateTrade(&trade, bar, i)
			if didClose {
				closedTrades = append(closedTrades, closed)
				closedPnL += closed.PnL()
			} else {
				stillOpen = append(stillOpen, trade)
			}
		}
		openTrades = stillOpen

		if len(openTrades) == 0 {
			if signal, ok := cfg.Signals.DetectEntrySignal(higherBars, lowerBars, i); ok {
				riskCapital := capital * cfg.RiskPerTrade
				sizing := ComputePositionSize(signal.Entry, signal.Stop, riskCapital, capital, signal.Category)
				if sizing.IsValid {
					trade := cfg.Simulator.OpenTrade(bar, i, signal.Direction, sizing.Size, signal.Stop, signal.Targets, signal.Category, signal.Confluence, signal.ATR)
					openTrades = append(openTrades, trade)
				}
			}
		}

		openPnL := 0.0
		for _, t := range openTrades {
			if t.Direction == workflow.Long {
				openPnL += (bar.Close - t.Entry) * t.Size
			} else {
				openPnL += (t.Entry - bar.Close) * t.Size
			}
		}

		equity = append(equity, EquityPoint{
			Time: bar.Time, BarIndex: i,
			Equity: cfg.InitialCapital + closedPnL + openPnL,
			OpenPnL: openPnL, ClosedPnL: closedPnL, ClosedTradeCount: len(closedTrades),
		})
		capital = cfg.InitialCapital + closedPnL
	}

	if len(openTrades) > 0 {
		finalBar := lowerBars[len(lowerBars)-1]
		for _, c := range cfg.Simulator.CloseAllTrades(openTrades, finalBar, len(lowerBars)-1) {
			closedTrades = append(closedTrades, c)
			closedPnL += c.PnL()
		}
	}

	return Result{
		Trades:  closedTrades,
		Equity:  equity,
		Metrics: ComputeMetrics(closedTrades, equity),
	}, nil
}
