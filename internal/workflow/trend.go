package workflow

import (
	"math"

	"github.com/sawpanic/marketanalysis/internal/pivot"
)

// AssessTrendFromSwings implements the trend-assessment rule of spec.md
// §4.6 as a pure function: from the last four swing markers, count
// bullish=HH+HL, bearish=LH+LL, and derive trend/confidence/ranging.
func AssessTrendFromSwings(markers []pivot.Marker, recentPivots []pivot.Point, currentPrice float64) TrendAssessment {
	last4 := markers
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	bullishCount, bearishCount := 0, 0
	for _, m := range last4 {
		switch m.SwingType {
		case pivot.SwingHH, pivot.SwingHL:
			bullishCount++
		case pivot.SwingLH, pivot.SwingLL:
			bearishCount++
		}
	}

	var trend Trend
	switch {
	case bullishCount > bearishCount:
		trend = TrendBullish
	case bearishCount > bullishCount:
		trend = TrendBearish
	default:
		trend = TrendNeutral
	}

	swingType := pivot.SwingHL
	if len(markers) > 0 {
		swingType = markers[len(markers)-1].SwingType
	}

	ranging, warning := DetectRanging(recentPivots)

	confidence := 50.0
	if trend != TrendNeutral {
		confidence = 75.0
	}
	if ranging {
		confidence -= 20
	}
	confidence = math.Max(0, math.Min(100, confidence))

	phase := DetectPhase(trend, recentPivots, currentPrice)

	return TrendAssessment{
		Trend:          trend,
		Phase:          phase,
		SwingType:      swingType,
		Confidence:     confidence,
		IsRanging:      ranging,
		RangingWarning: warning,
	}
}

// DetectRanging implements spec.md §4.6's ranging-detection rule: with >= 4
// recent pivots, declare ranging if peak-to-trough range% < 2.0, or the
// last two highs and last two lows each differ by less than 1% of the
// average price.
func DetectRanging(recentPivots []pivot.Point) (bool, string) {
	if len(recentPivots) < 4 {
		return false, ""
	}

	sum, minP, maxP := 0.0, recentPivots[0].Price, recentPivots[0].Price
	for _, p := range recentPivots {
		sum += p.Price
		if p.Price < minP {
			minP = p.Price
		}
		if p.Price > maxP {
			maxP = p.Price
		}
	}
	avg := sum / float64(len(recentPivots))
	if avg == 0 {
		return false, ""
	}
	rangePct := (maxP - minP) / avg * 100

	var highs, lows []float64
	for _, p := range recentPivots {
		if p.Kind == pivot.KindHigh {
			highs = append(highs, p.Price)
		} else {
			lows = append(lows, p.Price)
		}
	}

	tightHighs := false
	if len(highs) >= 2 {
		tightHighs = math.Abs(highs[len(highs)-1]-highs[len(highs)-2]) < avg*0.01
	}
	tightLows := false
	if len(lows) >= 2 {
		tightLows = math.Abs(lows[len(lows)-1]-lows[len(lows)-2]) < avg*0.01
	}

	ranging := rangePct < 2.0 || (tightHighs && tightLows)
	if !ranging {
		return false, ""
	}
	return true, "Price is ranging; consider waiting for a breakout before entering."
}

// DetectPhase implements spec.md §4.6's phase-detection rule relative to
// the latest pivot and current price.
func DetectPhase(trend Trend, recentPivots []pivot.Point, currentPrice float64) Phase {
	var lastHigh, lastLow *pivot.Point
	for i := len(recentPivots) - 1; i >= 0; i-- {
		p := recentPivots[i]
		if lastHigh == nil && p.Kind == pivot.KindHigh {
			cp := p
			lastHigh = &cp
		}
		if lastLow == nil && p.Kind == pivot.KindLow {
			cp := p
			lastLow = &cp
		}
		if lastHigh != nil && lastLow != nil {
			break
		}
	}

	switch trend {
	case TrendBullish:
		if lastLow != nil && currentPrice > lastLow.Price {
			if lastHigh != nil && currentPrice > lastHigh.Price {
				return PhaseContinuation
			}
			return PhaseImpulse
		}
		return PhaseCorrection
	case TrendBearish:
		if lastHigh != nil && currentPrice < lastHigh.Price {
			if lastLow != nil && currentPrice < lastLow.Price {
				return PhaseContinuation
			}
			return PhaseImpulse
		}
		return PhaseCorrection
	default:
		return PhaseCorrection
	}
}
