// Package fibonacci computes retracement, extension, projection, and
// expansion price levels from swing pivots (spec.md §4.3). The buy-direction
// extension formula projects below the swing low, not above the swing high
// — unusual relative to common convention but preserved exactly as
// specified per the Open Questions in spec.md §9.
package fibonacci

import "strconv"

// Direction indicates which side of the swing the trade/level is measured
// for.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// RetracementRatios are the standard retracement levels (spec.md §3).
var RetracementRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}

// ExtensionRatios are the standard extension levels (spec.md §3).
var ExtensionRatios = []float64{1.272, 1.414, 1.618, 2.0, 2.618}

// RatioKey renders a ratio as the string-integer key used at external
// boundaries: round(ratio*1000).
func RatioKey(ratio float64) string {
	n := int(ratio*1000 + 0.5)
	return strconv.Itoa(n)
}

// Retracement computes the price at ratio r between swing low L and swing
// high H (H > L), per spec.md §4.3:
//   buy:  price = H - range*r
//   sell: price = L + range*r
func Retracement(high, low, r float64, dir Direction) float64 {
	rng := high - low
	if dir == Sell {
		return low + rng*r
	}
	return high - rng*r
}

// Extension computes the price at ratio e beyond the anchor swing, per
// spec.md §4.3:
//   buy:  price = L - range*(e-1)   (projected below L)
//   sell: price = H + range*(e-1)
func Extension(high, low, e float64, dir Direction) float64 {
	rng := high - low
	if dir == Sell {
		return high + rng*(e-1)
	}
	return low - rng*(e-1)
}

// LevelSet maps a ratio-key string to its computed price.
type LevelSet map[string]float64

// RetracementLevels computes the full retracement level set for a swing.
func RetracementLevels(high, low float64, dir Direction) LevelSet {
	levels := make(LevelSet, len(RetracementRatios))
	for _, r := range RetracementRatios {
		levels[RatioKey(r)] = Retracement(high, low, r, dir)
	}
	return levels
}

// ExtensionLevels computes the full extension level set for a swing.
func ExtensionLevels(high, low float64, dir Direction) LevelSet {
	levels := make(LevelSet, len(ExtensionRatios))
	for _, e := range ExtensionRatios {
		levels[RatioKey(e)] = Extension(high, low, e, dir)
	}
	return levels
}

// Projection takes three points (A, B, C) and a ratio, scaling leg length
// |B-A| by ratio and applying it from C, mirroring Extension's buy/sell
// signs: buy subtracts (projects below C), sell adds (projects above C).
func Projection(a, b, c, ratio float64, dir Direction) float64 {
	legLength := b - a
	if legLength < 0 {
		legLength = -legLength
	}
	if dir == Sell {
		return c + legLength*ratio
	}
	return c - legLength*ratio
}

// Expansion takes two points (A, B) and a ratio, scaling leg length |B-A|
// by ratio and applying it from B with Extension's buy/sell signs: buy
// subtracts (projects below B), sell adds (projects above B), whichever way
// the leg itself travels.
func Expansion(a, b, ratio float64, dir Direction) float64 {
	legLength := b - a
	if legLength < 0 {
		legLength = -legLength
	}
	if dir == Sell {
		return b + legLength*ratio
	}
	return b - legLength*ratio
}
