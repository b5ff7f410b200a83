package workflow

// AssessAlignment implements spec.md §4.6's pullback-semantics alignment
// table: given the higher-timeframe trend and the lower-timeframe trend,
// decide whether a trade should be taken, in which direction, and whether
// it is a pullback entry.
//
// Pullback semantics (higher TF trend / lower TF trend -> decision):
//
//	bullish / bearish -> long, pullback, with_trend
//	bullish / bullish -> long, not pullback, with_trend
//	bearish / bullish -> short, pullback, with_trend
//	bearish / bearish -> short, not pullback, with_trend
//	neutral / *       -> no trade
//	* / neutral        -> no trade
func AssessAlignment(higherTF, lowerTF Trend) AlignmentResult {
	if higherTF == TrendNeutral || lowerTF == TrendNeutral {
		return AlignmentResult{ShouldTrade: false}
	}

	switch higherTF {
	case TrendBullish:
		if lowerTF == TrendBearish {
			return AlignmentResult{ShouldTrade: true, Direction: Long, IsPullback: true, Category: CategoryWithTrend}
		}
		return AlignmentResult{ShouldTrade: true, Direction: Long, IsPullback: false, Category: CategoryWithTrend}
	case TrendBearish:
		if lowerTF == TrendBullish {
			return AlignmentResult{ShouldTrade: true, Direction: Short, IsPullback: true, Category: CategoryWithTrend}
		}
		return AlignmentResult{ShouldTrade: true, Direction: Short, IsPullback: false, Category: CategoryWithTrend}
	default:
		return AlignmentResult{ShouldTrade: false}
	}
}

// CategorizeTrade implements spec.md §4.6's trade-categorization rule:
// direction aligned with the higher-TF trend is with_trend; against it,
// the trade is counter_trend when confluence >= 5, else reversal_attempt.
func CategorizeTrade(direction Direction, higherTF Trend, confluence int) TradeCategory {
	aligned := (higherTF == TrendBullish && direction == Long) ||
		(higherTF == TrendBearish && direction == Short)
	if aligned {
		return CategoryWithTrend
	}
	if confluence >= 5 {
		return CategoryCounterTrend
	}
	return CategoryReversalAttempt
}
