// Package workflow implements spec.md §4.6: trend assessment, phase
// detection, ranging detection, multi-timeframe alignment, confluence
// scoring, trade categorization, the 8-check validation checklist,
// opportunity scanning, and cascade-stage detection. There is no direct
// teacher analogue for this decision layer; FactorBreakdown-style
// attribution is grounded on internal/domain/scoring/composite.go in the
// teacher repo as additive debug output only.
package workflow

import (
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/pivot"
)

// Trend is the directional bias of a swing sequence.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Phase is the market-structure phase relative to trend and price.
type Phase string

const (
	PhaseImpulse      Phase = "impulse"
	PhaseCorrection   Phase = "correction"
	PhaseContinuation Phase = "continuation"
	PhaseExhaustion   Phase = "exhaustion"
)

// TrendAssessment is the output of AssessTrend (spec.md §3/§4.6).
type TrendAssessment struct {
	Trend          Trend
	Phase          Phase
	SwingType      pivot.SwingType
	Confidence     float64
	IsRanging      bool
	RangingWarning string
}

// Direction is a trade direction.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// TradeCategory drives position-size risk multipliers (spec.md §4.6).
type TradeCategory string

const (
	CategoryWithTrend       TradeCategory = "with_trend"
	CategoryCounterTrend    TradeCategory = "counter_trend"
	CategoryReversalAttempt TradeCategory = "reversal_attempt"
)

// RiskMultiplier returns the position-size risk multiplier for a category.
func (c TradeCategory) RiskMultiplier() float64 {
	switch c {
	case CategoryWithTrend:
		return 1.0
	case CategoryCounterTrend:
		return 0.5
	case CategoryReversalAttempt:
		return 0.25
	default:
		return 0
	}
}

// AlignmentResult is the output of the pullback-semantics alignment rule
// (spec.md §4.6 table).
type AlignmentResult struct {
	ShouldTrade bool
	Direction   Direction
	IsPullback  bool
	Category    TradeCategory
}

// ConfluenceTier is the interpretation tier of a ConfluenceScore total
// (spec.md §3).
type ConfluenceTier string

const (
	TierStandard    ConfluenceTier = "standard"
	TierImportant   ConfluenceTier = "important"
	TierSignificant ConfluenceTier = "significant"
	TierMajor       ConfluenceTier = "major"
)

// ConfluenceScore is the integer total with breakdown of spec.md §3/§4.6.
type ConfluenceScore struct {
	Base              int
	SameTF            int
	HigherTF          int
	CrossTool         int
	PreviousPivot     int
	Psychological     int
	Total             int
	Tier              ConfluenceTier
	FactorBreakdown   map[string]float64 // attribution, additive debug output
}

// FibTool names the distinct Fibonacci tools scored for cross-tool
// confluence (spec.md §4.6).
type FibTool string

const (
	ToolRetracement FibTool = "retracement"
	ToolExtension   FibTool = "extension"
	ToolProjection  FibTool = "projection"
	ToolExpansion   FibTool = "expansion"
)

// PriceLevel is a single scored price from one Fibonacci tool at one
// timeframe.
type PriceLevel struct {
	Price     float64
	Tool      FibTool
	Timeframe ohlc.Timeframe
}
