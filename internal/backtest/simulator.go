package backtest

import (
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// TradeSimulator implements spec.md §4.7's TradeSimulator: stop/target
// resolution and breakeven/trailing-stop ratchet logic for open trades.
type TradeSimulator struct {
	BreakevenAtR     float64
	TrailingStopAtR  float64
	TrailingStopATR  float64
}

// NewTradeSimulator builds a TradeSimulator with the given thresholds.
func NewTradeSimulator(breakevenAtR, trailingStopAtR, trailingStopATR float64) *TradeSimulator {
	return &TradeSimulator{BreakevenAtR: breakevenAtR, TrailingStopAtR: trailingStopAtR, TrailingStopATR: trailingStopATR}
}

// OpenTrade implements TradeSimulator.open_trade.
func (ts *TradeSimulator) OpenTrade(bar ohlc.Bar, idx int, direction workflow.Direction, size, stop float64, targets []float64, category workflow.TradeCategory, confluence int, atr float64) OpenTrade {
	return NewOpenTrade(bar, idx, direction, size, stop, targets, category, confluence, atr)
}

// targetReason maps a target index (0-based, clamped to 2) to its exit
// reason.
func targetReason(i int) ExitReason {
	switch {
	case i <= 0:
		return ExitTarget1
	case i == 1:
		return ExitTarget2
	default:
		return ExitTarget3
	}
}

// UpdateTrade implements TradeSimulator.update_trade (spec.md §4.7): stop
// check, then target check, then extremum/breakeven/trailing-stop update,
// strictly in that order. Returns the closed trade and true when the trade
// closed this bar.
func (ts *TradeSimulator) UpdateTrade(trade *OpenTrade, bar ohlc.Bar, idx int) (ClosedTrade, bool) {
	long := trade.Direction == workflow.Long

	// 1. Stop hit.
	stopHit := (long && bar.Low <= trade.CurrentStop) || (!long && bar.High >= trade.CurrentStop)
	if stopHit {
		reason := ExitStopLoss
		if trade.AtBreakeven {
			reason = ExitTrailingStop
		}
		return trade.Close(bar.Time, idx, trade.CurrentStop, reason), true
	}

	// 2. Target hit: scan in order, clamp reporting to 3.
	for i, target := range trade.Targets {
		hit := (long && bar.High >= target) || (!long && bar.Low <= target)
		if hit {
			return trade.Close(bar.Time, idx, target, targetReason(i)), true
		}
	}

	// 3. Tracking update: extremum, unrealized R, breakeven, trailing stop.
	if long {
		if bar.High > trade.HighestPrice {
			trade.HighestPrice = bar.High
		}
	} else {
		if trade.LowestPrice == 0 || bar.Low < trade.LowestPrice {
			trade.LowestPrice = bar.Low
		}
	}

	initialRisk := trade.Entry - trade.InitialStop
	if initialRisk < 0 {
		initialRisk = -initialRisk
	}
	if initialRisk == 0 {
		return ClosedTrade{}, false
	}

	var favor float64
	if long {
		favor = trade.HighestPrice - trade.Entry
	} else {
		favor = trade.Entry - trade.LowestPrice
	}
	r := favor / initialRisk

	if r >= ts.BreakevenAtR && !trade.AtBreakeven {
		trade.CurrentStop = trade.Entry
		trade.AtBreakeven = true
	}

	if r >= ts.TrailingStopAtR {
		var newStop float64
		if long {
			newStop = trade.HighestPrice - trade.ATR*ts.TrailingStopATR
			if newStop > trade.CurrentStop {
				trade.CurrentStop = newStop
			}
		} else {
			newStop = trade.LowestPrice + trade.ATR*ts.TrailingStopATR
			if newStop < trade.CurrentStop {
				trade.CurrentStop = newStop
			}
		}
	}

	return ClosedTrade{}, false
}

// CloseAllTrades implements TradeSimulator.close_all_trades: every open
// trade is closed at the final bar's close with reason END_OF_DATA.
func (ts *TradeSimulator) CloseAllTrades(trades []OpenTrade, finalBar ohlc.Bar, finalIdx int) []ClosedTrade {
	closed := make([]ClosedTrade, 0, len(trades))
	for _, t := range trades {
		closed = append(closed, t.Close(finalBar.Time, finalIdx, finalBar.Close, ExitEndOfData))
	}
	return closed
}
