package workflow

import "math"

// ScoreConfluence implements spec.md §3/§4.6's confluence-scoring rule for
// one candidate price against a set of other scored levels. sameTF and
// higherTF are levels on the candidate's own timeframe and on a higher
// timeframe respectively, excluding the candidate itself. previousPivot is
// true when a previous major pivot lies within tolerance.
//
// The breakdown is additive and mirrors the teacher's FactorBreakdown
// shape (internal/domain/scoring/composite.go): a map of named
// contributions kept alongside the integer total for debugging/attribution,
// without altering the total/tier semantics.
func ScoreConfluence(candidate PriceLevel, sameTF, higherTF []PriceLevel, previousPivotWithinTolerance bool) ConfluenceScore {
	tolerance := math.Abs(candidate.Price) * 0.005

	within := func(levels []PriceLevel, price float64) int {
		n := 0
		for _, l := range levels {
			if math.Abs(l.Price-price) <= tolerance {
				n++
			}
		}
		return n
	}

	sameTFCount := within(sameTF, candidate.Price)
	higherTFCount := within(higherTF, candidate.Price)

	toolsSeen := map[FibTool]bool{}
	for _, l := range sameTF {
		if l.Tool != candidate.Tool && math.Abs(l.Price-candidate.Price) <= tolerance {
			toolsSeen[l.Tool] = true
		}
	}
	for _, l := range higherTF {
		if l.Tool != candidate.Tool && math.Abs(l.Price-candidate.Price) <= tolerance {
			toolsSeen[l.Tool] = true
		}
	}
	crossTool := len(toolsSeen)

	previousPivot := 0
	if previousPivotWithinTolerance {
		previousPivot = 2
	}

	psychological := 0
	if isPsychologicalLevel(candidate.Price) {
		psychological = 1
	}

	base := 1
	total := base + sameTFCount + higherTFCount*2 + crossTool*2 + previousPivot + psychological

	return ConfluenceScore{
		Base:          base,
		SameTF:        sameTFCount,
		HigherTF:      higherTFCount,
		CrossTool:     crossTool,
		PreviousPivot: previousPivot,
		Psychological: psychological,
		Total:         total,
		Tier:          tierFor(total),
		FactorBreakdown: map[string]float64{
			"base":          float64(base),
			"same_tf":       float64(sameTFCount),
			"higher_tf":     float64(higherTFCount * 2),
			"cross_tool":    float64(crossTool * 2),
			"previous_pivot": float64(previousPivot),
			"psychological":  float64(psychological),
		},
	}
}

// tierFor maps a confluence total to its interpretation tier (spec.md §3).
func tierFor(total int) ConfluenceTier {
	switch {
	case total >= 7:
		return TierMajor
	case total >= 5:
		return TierSignificant
	case total >= 3:
		return TierImportant
	default:
		return TierStandard
	}
}

// isPsychologicalLevel implements spec.md §4.6's round-number bands:
// <100 -> nearest 10, <1000 -> nearest 100, <10000 -> nearest 500, else
// nearest 1000.
func isPsychologicalLevel(price float64) bool {
	p := math.Abs(price)
	switch {
	case p < 100:
		return math.Mod(p, 10) == 0
	case p < 1000:
		return math.Mod(p, 100) == 0
	case p < 10000:
		return math.Mod(p, 500) == 0
	default:
		return math.Mod(p, 1000) == 0
	}
}
