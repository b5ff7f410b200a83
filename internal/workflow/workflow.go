package workflow

import (
	"context"

	"github.com/sawpanic/marketanalysis/internal/apperr"
	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/indicators"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/pivot"
)

const (
	defaultLookback = 5
	defaultCount    = 10
	defaultPeriods  = 100
)

// Workflow composes the market-data service with the pivot, fibonacci, and
// indicators packages behind the §6 workflow service methods. It is the
// top-level analog of analysis.Orchestrator for the decision layer.
type Workflow struct {
	market *marketdata.Service
}

// New builds a Workflow over a market-data service.
func New(market *marketdata.Service) *Workflow {
	return &Workflow{market: market}
}

// fetchAndAssess fetches bars for one timeframe and returns the detected
// pivots, swing markers, and trend assessment together.
func (w *Workflow) fetchAndAssess(ctx context.Context, symbol string, tf ohlc.Timeframe) ([]ohlc.Bar, pivot.DetectionResult, []pivot.Marker, TrendAssessment, error) {
	result := w.market.Get(ctx, symbol, tf, defaultPeriods, false)
	if !result.Success {
		return nil, pivot.DetectionResult{}, nil, TrendAssessment{}, apperr.ProviderFailure(result.Error)
	}
	if len(result.Data) == 0 {
		return nil, pivot.DetectionResult{}, nil, TrendAssessment{}, apperr.InsufficientData("no bars returned")
	}

	pivots := pivot.DetectPivots(result.Data, defaultLookback, defaultCount)
	markers := pivot.ClassifySwings(pivots.Pivots)
	currentPrice := result.Data[len(result.Data)-1].Close

	assessment := AssessTrendFromSwings(markers, pivots.RecentPivots, currentPrice)
	return result.Data, pivots, markers, assessment, nil
}

// AssessTrend implements Workflow.assess_trend (spec.md §6).
func (w *Workflow) AssessTrend(ctx context.Context, symbol string, tf ohlc.Timeframe) (TrendAssessment, error) {
	_, _, _, assessment, err := w.fetchAndAssess(ctx, symbol, tf)
	return assessment, err
}

// CheckTimeframeAlignment implements Workflow.check_timeframe_alignment
// (spec.md §6). tfs[0] is the higher timeframe, tfs[1] the lower.
func (w *Workflow) CheckTimeframeAlignment(ctx context.Context, symbol string, tfs []ohlc.Timeframe) (AlignmentResult, error) {
	if len(tfs) < 2 {
		return AlignmentResult{}, apperr.InvalidArgument("check_timeframe_alignment requires at least two timeframes (higher, lower)")
	}

	_, _, _, higher, err := w.fetchAndAssess(ctx, symbol, tfs[0])
	if err != nil {
		return AlignmentResult{}, err
	}
	_, _, _, lower, err := w.fetchAndAssess(ctx, symbol, tfs[1])
	if err != nil {
		return AlignmentResult{}, err
	}

	return AssessAlignment(higher.Trend, lower.Trend), nil
}

// LevelsResult is the output of IdentifyFibonacciLevels.
type LevelsResult struct {
	Retracement fibonacci.LevelSet
	Extension   fibonacci.LevelSet
	SwingHigh   float64
	SwingLow    float64
}

// IdentifyFibonacciLevels implements Workflow.identify_fibonacci_levels
// (spec.md §6).
func (w *Workflow) IdentifyFibonacciLevels(ctx context.Context, symbol string, tf ohlc.Timeframe, direction fibonacci.Direction) (LevelsResult, error) {
	_, pivots, _, _, err := w.fetchAndAssess(ctx, symbol, tf)
	if err != nil {
		return LevelsResult{}, err
	}
	if pivots.SwingHigh == nil || pivots.SwingLow == nil {
		return LevelsResult{}, apperr.InsufficientData("not enough pivots to derive a swing range")
	}

	high, low := pivots.SwingHigh.Price, pivots.SwingLow.Price
	return LevelsResult{
		Retracement: fibonacci.RetracementLevels(high, low, direction),
		Extension:   fibonacci.ExtensionLevels(high, low, direction),
		SwingHigh:   high,
		SwingLow:    low,
	}, nil
}

// IndicatorConfirmation is the output of ConfirmWithIndicators.
type IndicatorConfirmation struct {
	Snapshot      indicators.Snapshot
	RSIBullish    bool
	RSIBearish    bool
	MACDBullish   bool
	MACDBearish   bool
	VolumeAboveAvg bool
}

// ConfirmWithIndicators implements Workflow.confirm_with_indicators
// (spec.md §6).
func (w *Workflow) ConfirmWithIndicators(ctx context.Context, symbol string, tf ohlc.Timeframe) (IndicatorConfirmation, error) {
	result := w.market.Get(ctx, symbol, tf, defaultPeriods, false)
	if !result.Success {
		return IndicatorConfirmation{}, apperr.ProviderFailure(result.Error)
	}

	snap := indicators.Compute(result.Data)
	hist, _ := snap.MACD.LatestHistogram()

	return IndicatorConfirmation{
		Snapshot:       snap,
		RSIBullish:     snap.RSI.IsBullish(),
		RSIBearish:     snap.RSI.IsBearish(),
		MACDBullish:    hist > 0,
		MACDBearish:    hist < 0,
		VolumeAboveAvg: snap.Volume.IsAboveAverage,
	}, nil
}

// CategorizeTrade implements Workflow.categorize_trade (spec.md §6) as a
// pure method: lowerTrend is accepted to match the service signature but
// the categorization rule (spec.md §4.6) only consults the higher-TF trend.
func (w *Workflow) CategorizeTrade(higherTrend, lowerTrend Trend, direction Direction, confluence int) TradeCategory {
	_ = lowerTrend
	return CategorizeTrade(direction, higherTrend, confluence)
}

// DetectCascade implements Workflow.detect_cascade (spec.md §6). tfs must
// be supplied coarsest-first to match the hierarchy ordering the
// cascade-stage rule assumes.
func (w *Workflow) DetectCascade(ctx context.Context, symbol string, tfs []ohlc.Timeframe) (CascadeAnalysis, error) {
	entries := make([]TimeframeTrend, 0, len(tfs))
	for _, tf := range tfs {
		_, _, _, assessment, err := w.fetchAndAssess(ctx, symbol, tf)
		if err != nil {
			return CascadeAnalysis{}, err
		}
		entries = append(entries, TimeframeTrend{Timeframe: tf, Trend: assessment.Trend})
	}
	return DetectCascade(entries), nil
}
