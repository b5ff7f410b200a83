// Package analysis implements the single public analyze operation of
// spec.md §4.5: fetch -> pivots -> fibonacci -> signal detection on the
// latest bar.
package analysis

import (
	"context"
	"math"
	"strconv"

	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/pivot"
)

// Config mirrors spec.md §4.5's request.config.
type Config struct {
	PivotLookback int
	PivotCount    int
	FibDirection  fibonacci.Direction
	DetectSignals bool
}

// DefaultConfig returns the spec's default analysis configuration.
func DefaultConfig() Config {
	return Config{PivotLookback: 5, PivotCount: 10, FibDirection: fibonacci.Buy, DetectSignals: true}
}

// Request mirrors spec.md §4.5's request shape.
type Request struct {
	Symbol    string
	Timeframe ohlc.Timeframe
	Periods   int
	Config    Config
}

// Signal is emitted when the latest bar qualifies as a bullish/bearish
// signal bar at a retracement price.
type Signal struct {
	RatioKey string
	Price    float64
	Bullish  bool
}

// Response is the full analysis result. Success=false carries a
// human-readable Error and the request's Symbol and Timeframe; no other
// fields are populated (spec.md §7).
type Response struct {
	Success           bool
	Error             string
	Symbol            string
	Timeframe         ohlc.Timeframe
	Market            marketdata.Result
	Pivots            pivot.DetectionResult
	SwingMarkers      []pivot.Marker
	RetracementLevels fibonacci.LevelSet
	ExtensionLevels   fibonacci.LevelSet
	Signals           []Signal
}

// Orchestrator composes the market-data service with the pivot and
// fibonacci packages behind one Analyze operation.
type Orchestrator struct {
	market *marketdata.Service
}

// New builds an Orchestrator over a market-data service.
func New(market *marketdata.Service) *Orchestrator {
	return &Orchestrator{market: market}
}

const signalTolerancePct = 0.005 // 0.5%, matching workflow confluence tolerance

// Analyze runs the full fetch -> pivots -> fibonacci -> signal pipeline for
// one request.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) Response {
	periods := req.Periods
	if periods <= 0 {
		periods = 100
	}
	cfg := req.Config
	if cfg.PivotLookback <= 0 {
		cfg.PivotLookback = 5
	}
	if cfg.PivotCount == 0 {
		cfg.PivotCount = 10
	}
	if cfg.FibDirection == "" {
		cfg.FibDirection = fibonacci.Buy
	}

	market := o.market.Get(ctx, req.Symbol, req.Timeframe, periods, false)
	if !market.Success {
		return Response{Success: false, Error: market.Error, Symbol: req.Symbol, Timeframe: req.Timeframe}
	}

	pivots := pivot.DetectPivots(market.Data, cfg.PivotLookback, cfg.PivotCount)
	swings := pivot.ClassifySwings(pivots.Pivots)

	resp := Response{
		Success:      true,
		Symbol:       req.Symbol,
		Timeframe:    req.Timeframe,
		Market:       market,
		Pivots:       pivots,
		SwingMarkers: swings,
	}

	if pivots.SwingHigh != nil && pivots.SwingLow != nil {
		high, low := pivots.SwingHigh.Price, pivots.SwingLow.Price
		resp.RetracementLevels = fibonacci.RetracementLevels(high, low, cfg.FibDirection)
		resp.ExtensionLevels = fibonacci.ExtensionLevels(high, low, cfg.FibDirection)
	}

	if cfg.DetectSignals && len(market.Data) > 0 && resp.RetracementLevels != nil {
		resp.Signals = detectSignals(market.Data[len(market.Data)-1], resp.RetracementLevels)
	}

	return resp
}

func detectSignals(last ohlc.Bar, levels fibonacci.LevelSet) []Signal {
	var signals []Signal
	bullish := last.Close > last.Open
	bearish := last.Close < last.Open
	if !bullish && !bearish {
		return nil
	}

	for key, price := range levels {
		tolerance := math.Abs(price) * signalTolerancePct
		if math.Abs(last.Close-price) <= tolerance {
			signals = append(signals, Signal{RatioKey: key, Price: price, Bullish: bullish})
		}
	}
	return signals
}

// ratioKeyInt parses a ratio key back to its integer form. Nothing in this
// module calls it.
func ratioKeyInt(key string) int {
	n, _ := strconv.Atoi(key)
	return n
}
