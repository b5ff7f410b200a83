// Package pivot implements swing-pivot detection and HH/HL/LH/LL
// classification over a bar sequence (spec.md §4.2). There is no direct
// teacher analogue for this algorithm in sawpanic-cryptorun; it is written
// fresh against the spec, in the plain-struct / pure-function idiom the
// rest of this module's domain packages share with the teacher's
// internal/domain packages.
package pivot

import "github.com/sawpanic/marketanalysis/internal/ohlc"

// Kind distinguishes a swing high from a swing low.
type Kind string

const (
	KindHigh Kind = "high"
	KindLow  Kind = "low"
)

// Point is a single detected pivot.
type Point struct {
	BarIndex int
	Price    float64
	Kind     Kind
	Time     ohlc.Bar
}

// SwingType classifies a pivot relative to the previous same-kind pivot.
type SwingType string

const (
	SwingHH SwingType = "HH"
	SwingHL SwingType = "HL"
	SwingLH SwingType = "LH"
	SwingLL SwingType = "LL"
)

// Marker is a Point extended with its swing classification.
type Marker struct {
	Point
	SwingType SwingType
}

// DetectionResult is the full output of DetectPivots.
type DetectionResult struct {
	Pivots       []Point
	RecentPivots []Point
	PivotHigh    float64
	PivotLow     float64
	SwingHigh    *Point
	SwingLow     *Point
}

// DetectPivots finds alternating swing highs/lows over bars using a
// symmetric lookback window, then enforces strict kind-alternation.
//
// A bar at index i is a swing high iff high_i is strictly greater than the
// high of every other bar in [i-lookback, i+lookback]; symmetric for swing
// lows using the low. Ties disqualify a candidate. When len(bars) <
// 2*lookback+1, the result is empty.
func DetectPivots(bars []ohlc.Bar, lookback, count int) DetectionResult {
	n := len(bars)
	if n < 2*lookback+1 {
		return DetectionResult{}
	}

	type candidate struct {
		idx  int
		kind Kind
	}
	var candidates []candidate

	for i := lookback; i <= n-lookback-1; i++ {
		isHigh := true
		isLow := true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
		}
		if isHigh {
			candidates = append(candidates, candidate{idx: i, kind: KindHigh})
		}
		if isLow {
			candidates = append(candidates, candidate{idx: i, kind: KindLow})
		}
	}

	var pivots []Point
	for _, c := range candidates {
		price := bars[c.idx].High
		if c.kind == KindLow {
			price = bars[c.idx].Low
		}
		p := Point{BarIndex: c.idx, Price: price, Kind: c.kind, Time: bars[c.idx]}

		if len(pivots) == 0 || pivots[len(pivots)-1].Kind != c.kind {
			pivots = append(pivots, p)
			continue
		}

		last := pivots[len(pivots)-1]
		moreExtreme := (c.kind == KindHigh && p.Price > last.Price) ||
			(c.kind == KindLow && p.Price < last.Price)
		if moreExtreme {
			pivots[len(pivots)-1] = p
		}
		// else: discard, last entry remains the most extreme in its run.
	}

	result := DetectionResult{Pivots: pivots}

	for i := len(pivots) - 1; i >= 0; i-- {
		if result.SwingHigh == nil && pivots[i].Kind == KindHigh {
			p := pivots[i]
			result.SwingHigh = &p
		}
		if result.SwingLow == nil && pivots[i].Kind == KindLow {
			p := pivots[i]
			result.SwingLow = &p
		}
		if result.SwingHigh != nil && result.SwingLow != nil {
			break
		}
	}

	highSeen := false
	lowSeen := false
	for _, p := range pivots {
		if p.Kind == KindHigh {
			if !highSeen || p.Price > result.PivotHigh {
				result.PivotHigh = p.Price
			}
			highSeen = true
		} else {
			if !lowSeen || p.Price < result.PivotLow {
				result.PivotLow = p.Price
			}
			lowSeen = true
		}
	}

	if count <= 0 {
		result.RecentPivots = pivots
	} else if count >= len(pivots) {
		result.RecentPivots = pivots
	} else {
		result.RecentPivots = pivots[len(pivots)-count:]
	}

	return result
}

// ClassifySwings assigns HH/HL/LH/LL swing types to a pivot sequence. The
// first pivot of each kind has no prior same-kind pivot to compare against
// and is omitted. Equal prices are not classified (also omitted).
func ClassifySwings(pivots []Point) []Marker {
	var markers []Marker
	var lastHigh, lastLow *Point

	for _, p := range pivots {
		switch p.Kind {
		case KindHigh:
			if lastHigh != nil && p.Price != lastHigh.Price {
				st := SwingLH
				if p.Price > lastHigh.Price {
					st = SwingHH
				}
				markers = append(markers, Marker{Point: p, SwingType: st})
			}
			cur := p
			lastHigh = &cur
		case KindLow:
			if lastLow != nil && p.Price != lastLow.Price {
				st := SwingLL
				if p.Price > lastLow.Price {
					st = SwingHL
				}
				markers = append(markers, Marker{Point: p, SwingType: st})
			}
			cur := p
			lastLow = &cur
		}
	}
	return markers
}
