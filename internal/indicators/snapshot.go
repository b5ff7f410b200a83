package indicators

import "github.com/sawpanic/marketanalysis/internal/ohlc"

// Snapshot bundles the indicator set the workflow layer's confirmation
// checks (spec.md §4.6 checks 4/5/6) consult for a bar series, grounded on
// the teacher's TechnicalIndicators aggregate struct.
type Snapshot struct {
	RSI    RSIResult
	MACD   MACDResult
	ATR    ATRResult
	Volume VolumeAnalysis
}

// Compute builds a Snapshot from a bar sequence, running each indicator
// with its standard period. Indicators that lack sufficient data are left
// at their zero/invalid value rather than failing the whole snapshot.
func Compute(bars []ohlc.Bar) Snapshot {
	closes := ohlc.Closes(bars)
	highs := ohlc.Highs(bars)
	lows := ohlc.Lows(bars)
	volumes := ohlc.Volumes(bars)

	snap := Snapshot{
		RSI: DefaultRSI(closes),
		ATR: DefaultATR(highs, lows, closes),
	}
	if macd, err := DefaultMACD(closes); err == nil {
		snap.MACD = macd
	}
	snap.Volume = DefaultVolumeAnalysis(volumes)
	return snap
}
