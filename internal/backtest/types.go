package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// ExitReason names why a trade closed.
type ExitReason string

const (
	ExitStopLoss      ExitReason = "STOP_LOSS"
	ExitTrailingStop  ExitReason = "TRAILING_STOP"
	ExitTarget1       ExitReason = "TARGET_1"
	ExitTarget2       ExitReason = "TARGET_2"
	ExitTarget3       ExitReason = "TARGET_3"
	ExitEndOfData     ExitReason = "END_OF_DATA"
	ExitManual        ExitReason = "MANUAL"
)

// TradeStatus is the closed-trade status bucket derived from ExitReason.
type TradeStatus string

const (
	StatusStoppedOut TradeStatus = "STOPPED_OUT"
	StatusTargetHit  TradeStatus = "TARGET_HIT"
	StatusClosed     TradeStatus = "CLOSED"
)

// StatusFor maps an exit reason to its status bucket (spec.md §4.7).
func StatusFor(reason ExitReason) TradeStatus {
	switch reason {
	case ExitStopLoss:
		return StatusStoppedOut
	case ExitTarget1, ExitTarget2, ExitTarget3:
		return StatusTargetHit
	default:
		return StatusClosed
	}
}

// EntrySignal is produced by SignalsProcessor.DetectEntrySignal.
type EntrySignal struct {
	BarIndex   int
	Time       time.Time
	Direction  workflow.Direction
	Category   workflow.TradeCategory
	Entry      float64
	Stop       float64
	Targets    []float64
	Confluence int
	ATR        float64
}

// OpenTrade is a trade with only entry-time fields set; it carries no
// exit-related state at all, eliminating the invalid partially-closed
// states a single mutable struct would allow (spec.md §9 design notes).
type OpenTrade struct {
	ID           string
	EntryTime    time.Time
	EntryIndex   int
	Direction    workflow.Direction
	Category     workflow.TradeCategory
	Size         float64
	Entry        float64
	InitialStop  float64
	CurrentStop  float64
	Targets      []float64
	Confluence   int
	ATR          float64
	HighestPrice float64
	LowestPrice  float64
	AtBreakeven  bool
}

// NewOpenTrade implements TradeSimulator.open_trade (spec.md §4.7). The
// trade ID is derived from the entry bar index and direction rather than
// generated randomly, so replaying the same bar series produces
// bitwise-equal trades (spec.md §8 backtest idempotence).
func NewOpenTrade(bar ohlc.Bar, idx int, direction workflow.Direction, size, stop float64, targets []float64, category workflow.TradeCategory, confluence int, atr float64) OpenTrade {
	t := OpenTrade{
		ID:          fmt.Sprintf("trade-%d-%s", idx, direction),
		EntryTime:   bar.Time,
		EntryIndex:  idx,
		Direction:   direction,
		Category:    category,
		Size:        size,
		Entry:       bar.Close,
		InitialStop: stop,
		CurrentStop: stop,
		Targets:     targets,
		Confluence:  confluence,
		ATR:         atr,
	}
	if direction == workflow.Long {
		t.HighestPrice = bar.High
	} else {
		t.LowestPrice = bar.Low
	}
	return t
}

// ClosedTrade is produced exactly once, when an OpenTrade closes; it is the
// only place exit fields exist, so they are always fully populated
// together (spec.md §9 design notes).
type ClosedTrade struct {
	ID          string
	EntryTime   time.Time
	EntryIndex  int
	ExitTime    time.Time
	ExitIndex   int
	Direction   workflow.Direction
	Category    workflow.TradeCategory
	Size        float64
	Entry       float64
	InitialStop float64
	Exit        float64
	ExitReason  ExitReason
	Status      TradeStatus
	Confluence  int
}

// PnL computes the signed profit/loss of a closed trade.
func (c ClosedTrade) PnL() float64 {
	if c.Direction == workflow.Long {
		return (c.Exit - c.Entry) * c.Size
	}
	return (c.Entry - c.Exit) * c.Size
}

// RMultiple implements the R-multiple invariant of spec.md §8: pnl-per-share
// divided by the initial per-share risk. When entry == stop, r_multiple is
// 0 unless the trade was profitable, in which case it is +Inf.
func (c ClosedTrade) RMultiple() float64 {
	risk := c.Entry - c.InitialStop
	if risk < 0 {
		risk = -risk
	}
	perShare := c.PnL() / c.Size
	if risk == 0 {
		if perShare > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return perShare / risk
}

// Close implements the OpenTrade -> ClosedTrade transition.
func (t OpenTrade) Close(exitTime time.Time, exitIdx int, exitPrice float64, reason ExitReason) ClosedTrade {
	return ClosedTrade{
		ID:          t.ID,
		EntryTime:   t.EntryTime,
		EntryIndex:  t.EntryIndex,
		ExitTime:    exitTime,
		ExitIndex:   exitIdx,
		Direction:   t.Direction,
		Category:    t.Category,
		Size:        t.Size,
		Entry:       t.Entry,
		InitialStop: t.InitialStop,
		Exit:        exitPrice,
		ExitReason:  reason,
		Status:      StatusFor(reason),
		Confluence:  t.Confluence,
	}
}

// EquityPoint is one sample of the backtest equity curve.
type EquityPoint struct {
	Time             time.Time
	BarIndex         int
	Equity           float64
	OpenPnL          float64
	ClosedPnL        float64
	ClosedTradeCount int
}
