package backtest

import (
	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/indicators"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/pivot"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// keyEntryRatios are the retracement ratios a signal bar must sit near to
// qualify as an entry (spec.md §4.7 step 5).
var keyEntryRatios = []float64{0.382, 0.5, 0.618}

// targetRatios are the extension ratios used for up to three profit
// targets (spec.md §4.7 step 9).
var targetRatios = []float64{1.0, 1.272, 1.618}

const signalTolerancePct = 0.005

// SignalsProcessor implements spec.md §4.7's detect_entry_signal: a
// lightweight, self-contained version of the workflow package's full
// multi-timeframe analysis, scoped to what one backtest bar needs.
type SignalsProcessor struct {
	LookbackPeriods     int
	ConfluenceThreshold int
	ValidationThreshold float64 // fraction in [0,1], e.g. 0.6 for 3-of-5
	ATRPeriod           int
	ATRStopMultiplier   float64
}

// NewSignalsProcessor builds a SignalsProcessor with the spec's defaults
// (atr_period=14).
func NewSignalsProcessor(lookback, confluenceThreshold int, validationThreshold, atrStopMultiplier float64) *SignalsProcessor {
	return &SignalsProcessor{
		LookbackPeriods:     lookback,
		ConfluenceThreshold: confluenceThreshold,
		ValidationThreshold: validationThreshold,
		ATRPeriod:           14,
		ATRStopMultiplier:   atrStopMultiplier,
	}
}

func trendOf(bars []ohlc.Bar) workflow.Trend {
	if len(bars) < 11 { // 2*lookback(5)+1
		return workflow.TrendNeutral
	}
	pivots := pivot.DetectPivots(bars, 5, 10)
	markers := pivot.ClassifySwings(pivots.Pivots)
	assessment := workflow.AssessTrendFromSwings(markers, pivots.RecentPivots, bars[len(bars)-1].Close)
	return assessment.Trend
}

// DetectEntrySignal implements spec.md §4.7's 9-step detect_entry_signal.
func (sp *SignalsProcessor) DetectEntrySignal(higherBars, lowerBars []ohlc.Bar, barIndex int) (EntrySignal, bool) {
	if barIndex < sp.LookbackPeriods || barIndex >= len(lowerBars) {
		return EntrySignal{}, false
	}

	higherTrend := trendOf(higherBars)

	windowStart := barIndex - sp.LookbackPeriods
	window := lowerBars[windowStart : barIndex+1]
	lowerTrend := trendOf(window)

	if higherTrend == workflow.TrendNeutral || lowerTrend == workflow.TrendNeutral {
		return EntrySignal{}, false
	}

	alignment := workflow.AssessAlignment(higherTrend, lowerTrend)
	if !alignment.ShouldTrade {
		return EntrySignal{}, false
	}
	direction := alignment.Direction
	category := alignment.Category

	high, low := window[0].High, window[0].Low
	for _, b := range window {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}

	fibDir := fibonacci.Buy
	if direction == workflow.Short {
		fibDir = fibonacci.Sell
	}
	retracement := fibonacci.RetracementLevels(high, low, fibDir)

	current := lowerBars[barIndex]
	bullish := current.Close > current.Open
	bearish := current.Close < current.Open
	if (direction == workflow.Long && !bullish) || (direction == workflow.Short && !bearish) {
		return EntrySignal{}, false
	}

	var entryLevel float64
	matched := false
	for _, ratio := range keyEntryRatios {
		price := retracement[fibonacci.RatioKey(ratio)]
		tolerance := price * signalTolerancePct
		if tolerance < 0 {
			tolerance = -tolerance
		}
		if absFloat(current.Close-price) <= tolerance {
			entryLevel = price
			matched = true
			break
		}
	}
	if !matched {
		return EntrySignal{}, false
	}

	highs := ohlc.Highs(window)
	lows := ohlc.Lows(window)
	closes := ohlc.Closes(window)
	atr := indicators.ATR(highs, lows, closes, sp.ATRPeriod)
	if !atr.IsValid {
		return EntrySignal{}, false
	}

	confluence := sp.scoreConfluence(entryLevel, retracement)
	if confluence < sp.ConfluenceThreshold {
		return EntrySignal{}, false
	}

	validationScore := sp.validate(alignment, confluence)
	if validationScore < sp.ValidationThreshold {
		return EntrySignal{}, false
	}

	entry := current.Close
	var stop float64
	if direction == workflow.Long {
		stop = entry - atr.Value*sp.ATRStopMultiplier
	} else {
		stop = entry + atr.Value*sp.ATRStopMultiplier
	}

	extension := fibonacci.ExtensionLevels(high, low, fibDir)
	targets := make([]float64, 0, len(targetRatios))
	for _, ratio := range targetRatios {
		targets = append(targets, extension[fibonacci.RatioKey(ratio)])
	}
	sortTargetsByTravel(targets, direction)

	return EntrySignal{
		BarIndex:   barIndex,
		Time:       current.Time,
		Direction:  direction,
		Category:   category,
		Entry:      entry,
		Stop:       stop,
		Targets:    targets,
		Confluence: confluence,
		ATR:        atr.Value,
	}, true
}

// scoreConfluence is a lightweight confluence check against the level set
// plus a psychological-round-number check (spec.md §4.7 step 7); it does
// not use the full workflow.ScoreConfluence cross-timeframe machinery since
// only one timeframe's levels are available at this point in the pipeline.
func (sp *SignalsProcessor) scoreConfluence(price float64, levels fibonacci.LevelSet) int {
	score := 1
	tolerance := absFloat(price) * signalTolerancePct
	for _, lvl := range levels {
		if lvl == price {
			continue
		}
		if absFloat(lvl-price) <= tolerance {
			score++
		}
	}
	if isRoundNumber(price) {
		score++
	}
	return score
}

// validate implements the 5-of-5 internal validation score of spec.md
// §4.7 step 8, returned as a fraction.
func (sp *SignalsProcessor) validate(alignment workflow.AlignmentResult, confluence int) float64 {
	checks := 0
	total := 5

	if alignment.ShouldTrade {
		checks++
	}
	if alignment.IsPullback {
		checks++
	}
	if confluence >= sp.ConfluenceThreshold {
		checks++
	}
	if confluence >= 2 {
		checks++
	}
	checks++ // signal-bar confirmed: guaranteed by the caller's bullish/bearish gate above

	return float64(checks) / float64(total)
}

func isRoundNumber(price float64) bool {
	p := absFloat(price)
	switch {
	case p < 100:
		return modFloat(p, 10) == 0
	case p < 1000:
		return modFloat(p, 100) == 0
	case p < 10000:
		return modFloat(p, 500) == 0
	default:
		return modFloat(p, 1000) == 0
	}
}

func modFloat(a, b float64) float64 {
	return a - float64(int(a/b))*b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// sortTargetsByTravel orders targets ascending for a long (price travels
// up) and descending for a short (price travels down), matching the
// sequential TARGET_1/2/3 check order of TradeSimulator.update_trade.
func sortTargetsByTravel(targets []float64, direction workflow.Direction) {
	for i := 1; i < len(targets); i++ {
		for j := i; j > 0; j-- {
			swap := false
			if direction == workflow.Long {
				swap = targets[j] < targets[j-1]
			} else {
				swap = targets[j] > targets[j-1]
			}
			if !swap {
				break
			}
			targets[j], targets[j-1] = targets[j-1], targets[j]
		}
	}
}
