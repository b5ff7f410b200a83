package workflow

import (
	"context"
	"fmt"

	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// CheckResult is the outcome of one validation-checklist item.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// ValidationResult is the output of ValidateTrade (spec.md §4.6, 8 checks).
type ValidationResult struct {
	Checks         []CheckResult
	PassedCount    int
	TotalCount     int
	PassPercentage float64
	IsValid        bool
}

// ValidateTradeRequest mirrors spec.md §6's validate_trade parameters.
type ValidateTradeRequest struct {
	Symbol      string
	HigherTF    ohlc.Timeframe
	LowerTF     ohlc.Timeframe
	Direction   Direction
	SignalBar   *ohlc.Bar
	EntryLevel  *float64
}

func fibDirectionFor(direction Direction) fibonacci.Direction {
	if direction == Long {
		return fibonacci.Buy
	}
	return fibonacci.Sell
}

// ValidateTrade implements Workflow.validate_trade (spec.md §4.6/§6): the
// 8-check validation checklist against live trend, levels, and indicator
// state.
func (w *Workflow) ValidateTrade(ctx context.Context, req ValidateTradeRequest) (ValidationResult, error) {
	_, _, _, higherTrend, err := w.fetchAndAssess(ctx, req.Symbol, req.HigherTF)
	if err != nil {
		return ValidationResult{}, err
	}
	_, lowerPivots, _, lowerTrend, err := w.fetchAndAssess(ctx, req.Symbol, req.LowerTF)
	if err != nil {
		return ValidationResult{}, err
	}

	indicatorsHigher, err := w.ConfirmWithIndicators(ctx, req.Symbol, req.HigherTF)
	if err != nil {
		return ValidationResult{}, err
	}
	indicatorsLower, err := w.ConfirmWithIndicators(ctx, req.Symbol, req.LowerTF)
	if err != nil {
		return ValidationResult{}, err
	}

	alignment := AssessAlignment(higherTrend.Trend, lowerTrend.Trend)

	checks := make([]CheckResult, 0, 8)

	// 1. Trend Alignment
	trendOK := alignment.ShouldTrade && alignment.Direction == req.Direction && higherTrend.Confidence >= 60
	checks = append(checks, CheckResult{
		Name: "Trend Alignment", Passed: trendOK,
		Detail: fmt.Sprintf("higher-TF trend=%s confidence=%.0f requested=%s", higherTrend.Trend, higherTrend.Confidence, req.Direction),
	})

	// 2. Entry Zone
	fibDir := fibDirectionFor(req.Direction)
	var retracement fibonacci.LevelSet
	entryZoneOK := false
	if lowerPivots.SwingHigh != nil && lowerPivots.SwingLow != nil {
		retracement = fibonacci.RetracementLevels(lowerPivots.SwingHigh.Price, lowerPivots.SwingLow.Price, fibDir)
		entryZoneOK = len(retracement) > 0
	}
	checks = append(checks, CheckResult{Name: "Entry Zone", Passed: entryZoneOK, Detail: "retracement levels computed on lower timeframe"})

	// 3. Target Zones
	var extension fibonacci.LevelSet
	targetZonesOK := false
	if lowerPivots.SwingHigh != nil && lowerPivots.SwingLow != nil {
		extension = fibonacci.ExtensionLevels(lowerPivots.SwingHigh.Price, lowerPivots.SwingLow.Price, fibDir)
		targetZonesOK = len(extension) > 0
	}
	checks = append(checks, CheckResult{Name: "Target Zones", Passed: targetZonesOK, Detail: "extension levels computed"})

	// 4. RSI Confirmation
	rsiOK := false
	var rsiDetail string
	switch {
	case alignment.IsPullback && req.Direction == Long:
		rsiOK = indicatorsLower.RSIBearish
		rsiDetail = "LONG pullback requires bearish/oversold lower-TF RSI"
	case alignment.IsPullback && req.Direction == Short:
		rsiOK = indicatorsLower.RSIBullish
		rsiDetail = "SHORT pullback requires bullish/overbought lower-TF RSI"
	default:
		rsiOK = (req.Direction == Long && (indicatorsLower.RSIBullish || !indicatorsLower.RSIBearish)) ||
			(req.Direction == Short && (indicatorsLower.RSIBearish || !indicatorsLower.RSIBullish))
		rsiDetail = "non-pullback requires trend-aligned or neutral lower-TF RSI"
	}
	checks = append(checks, CheckResult{Name: "RSI Confirmation", Passed: rsiOK, Detail: rsiDetail})

	// 5. MACD Confirmation
	macdOK := (req.Direction == Long && indicatorsHigher.MACDBullish) || (req.Direction == Short && indicatorsHigher.MACDBearish)
	checks = append(checks, CheckResult{Name: "MACD Confirmation", Passed: macdOK, Detail: "higher-TF MACD histogram direction must match trade direction"})

	// 6. Volume Confirmation
	volumeOK := indicatorsLower.VolumeAboveAvg
	checks = append(checks, CheckResult{Name: "Volume Confirmation", Passed: volumeOK, Detail: "lower-TF relative volume >= 1.0"})

	// 7. Confluence Score
	var candidate PriceLevel
	for _, price := range retracement {
		candidate = PriceLevel{Price: price, Tool: ToolRetracement, Timeframe: req.LowerTF}
		break
	}
	var sameTF []PriceLevel
	for _, price := range retracement {
		sameTF = append(sameTF, PriceLevel{Price: price, Tool: ToolRetracement, Timeframe: req.LowerTF})
	}
	for _, price := range extension {
		sameTF = append(sameTF, PriceLevel{Price: price, Tool: ToolExtension, Timeframe: req.LowerTF})
	}
	confluence := ScoreConfluence(candidate, sameTF, nil, false)
	category := CategorizeTrade(req.Direction, higherTrend.Trend, confluence.Total)
	confluenceThreshold := map[TradeCategory]int{CategoryWithTrend: 3, CategoryCounterTrend: 5}[category]
	confluenceOK := category != CategoryReversalAttempt && confluence.Total >= confluenceThreshold
	checks = append(checks, CheckResult{
		Name: "Confluence Score", Passed: confluenceOK,
		Detail: fmt.Sprintf("category=%s total=%d threshold=%d", category, confluence.Total, confluenceThreshold),
	})

	// 8. Signal Bar Confirmation
	signalBarOK := false
	signalDetail := "missing signal_bar or entry_level"
	if req.SignalBar != nil && req.EntryLevel != nil {
		bar := *req.SignalBar
		level := *req.EntryLevel
		if req.Direction == Long {
			signalBarOK = bar.Close > bar.Open && bar.Close > level
		} else {
			signalBarOK = bar.Close < bar.Open && bar.Close < level
		}
		signalDetail = fmt.Sprintf("close=%v open=%v entry_level=%v direction=%s", bar.Close, bar.Open, level, req.Direction)
	}
	checks = append(checks, CheckResult{Name: "Signal Bar Confirmation", Passed: signalBarOK, Detail: signalDetail})

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}
	total := len(checks)
	pct := float64(passed) / float64(total) * 100

	return ValidationResult{
		Checks:         checks,
		PassedCount:    passed,
		TotalCount:     total,
		PassPercentage: pct,
		IsValid:        pct >= 60,
	}, nil
}
