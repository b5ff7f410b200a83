package workflow

import "github.com/sawpanic/marketanalysis/internal/ohlc"

// TimeframeTrend pairs a timeframe with its assessed trend, used as input
// to DetectCascade.
type TimeframeTrend struct {
	Timeframe ohlc.Timeframe
	Trend     Trend
}

// CascadeStage is the 1-6 ordinal propagation depth of spec.md §4.6.
type CascadeStage int

// CascadeAnalysis is the output of DetectCascade.
type CascadeAnalysis struct {
	Dominant    Trend
	Diverging   []ohlc.Timeframe
	Stage       CascadeStage
	Probability float64
	Insight     string
	Progression string
}

// fineCluster is the group of timeframes that, alone, only ever reaches
// cascade stage 2 (spec.md §4.6).
var fineCluster = map[ohlc.Timeframe]bool{ohlc.TF5m: true, ohlc.TF3m: true, ohlc.TF15m: true}

// DetectCascade implements spec.md §4.6's cascade-stage detection: the
// dominant trend is the majority of the coarsest half of the hierarchy-
// ordered timeframe list; divergence is tracked by how deep (how coarse) it
// has propagated.
func DetectCascade(entries []TimeframeTrend) CascadeAnalysis {
	if len(entries) == 0 {
		return CascadeAnalysis{Stage: 1, Probability: 5, Insight: "Insufficient data for cascade analysis.", Progression: "No timeframes supplied."}
	}

	topHalf := entries[:((len(entries) + 1) / 2)]
	bullish, bearish, neutral := 0, 0, 0
	for _, e := range topHalf {
		switch e.Trend {
		case TrendBullish:
			bullish++
		case TrendBearish:
			bearish++
		default:
			neutral++
		}
	}

	dominant := TrendNeutral
	switch {
	case bullish > bearish && bullish >= neutral:
		dominant = TrendBullish
	case bearish > bullish && bearish >= neutral:
		dominant = TrendBearish
	}

	var diverging []ohlc.Timeframe
	for _, e := range entries {
		if e.Trend != dominant && e.Trend != TrendNeutral {
			diverging = append(diverging, e.Timeframe)
		}
	}

	if dominant == TrendNeutral || len(diverging) == 0 {
		return CascadeAnalysis{
			Dominant: dominant, Diverging: diverging, Stage: 1, Probability: 5,
			Insight:     "Timeframes are aligned or dominant trend is undecided; no reversal pressure detected.",
			Progression: "Stage 1 of 6: baseline alignment.",
		}
	}

	// deepestRank is the smallest HierarchyRank among diverging timeframes:
	// CoarsestToFinest puts the coarsest timeframe at index 0, so the
	// smallest rank is the coarsest (deepest) point divergence has reached.
	deepestRank := -1
	for _, tf := range diverging {
		r := tf.HierarchyRank()
		if deepestRank == -1 || r < deepestRank {
			deepestRank = r
		}
	}
	deepest := ohlc.CoarsestToFinest[deepestRank]

	var stage CascadeStage
	var prob float64
	var insight, progression string

	switch {
	case deepest == ohlc.TF1M || deepest == ohlc.TF1w:
		stage, prob = 6, 95
		insight = "Divergence has reached the weekly/monthly timeframe; the cascade is complete."
		progression = "Stage 6 of 6: full reversal."
	case deepest == ohlc.TF1d:
		stage, prob = 5, 75
		insight = "Divergence has reached the daily timeframe; a structural trend change is likely underway."
		progression = "Stage 5 of 6: daily timeframe joined."
	case deepest == ohlc.TF4h:
		stage, prob = 4, 50
		insight = "Divergence has reached the 4-hour timeframe; monitor daily structure for confirmation."
		progression = "Stage 4 of 6: 4H timeframe joined."
	case deepest == ohlc.TF1h:
		stage, prob = 3, 30
		insight = "Divergence has reached the 1-hour timeframe; early signs of a broader shift."
		progression = "Stage 3 of 6: 1H timeframe joined."
	case fineCluster[deepest] || deepest == ohlc.TF1m:
		stage, prob = 2, 15
		insight = "Only the finest timeframes have diverged; likely noise rather than a structural shift."
		progression = "Stage 2 of 6: 5m/3m/15m diverged."
	default:
		stage, prob = 1, 5
		insight = "Timeframes are aligned or dominant trend is undecided; no reversal pressure detected."
		progression = "Stage 1 of 6: baseline alignment."
	}

	return CascadeAnalysis{
		Dominant: dominant, Diverging: diverging, Stage: stage, Probability: prob,
		Insight: insight, Progression: progression,
	}
}
