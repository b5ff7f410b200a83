package indicators

import (
	"fmt"

	"github.com/sawpanic/marketanalysis/internal/apperr"
)

// MACDResult holds the three parallel output series. A nil entry at index i
// means the value is undefined at that index.
type MACDResult struct {
	MACD      []*float64
	Signal    []*float64
	Histogram []*float64
}

// MACD computes the MACD line, signal line, and histogram per spec.md
// §4.1. MACD is valid from index slow-1 onward; the signal line is the EMA
// of period `signal` computed over the defined portion of the MACD line and
// written back into the original indices; the histogram is MACD-signal
// wherever both are defined.
func MACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	if fast >= slow {
		return MACDResult{}, apperr.InvalidArgument(fmt.Sprintf("macd: fast (%d) must be < slow (%d)", fast, slow))
	}
	if len(prices) < slow {
		return MACDResult{}, apperr.InvalidArgument(fmt.Sprintf("macd: need at least %d prices, got %d", slow, len(prices)))
	}

	fastEMA, err := EMA(prices, fast)
	if err != nil {
		return MACDResult{}, err
	}
	slowEMA, err := EMA(prices, slow)
	if err != nil {
		return MACDResult{}, err
	}

	n := len(prices)
	macdLine := make([]*float64, n)
	for i := slow - 1; i < n; i++ {
		v := fastEMA[i] - slowEMA[i]
		macdLine[i] = &v
	}

	defined := make([]float64, 0, n)
	for i := slow - 1; i < n; i++ {
		defined = append(defined, *macdLine[i])
	}

	signalLine := make([]*float64, n)
	if len(defined) >= signal {
		definedSignal, err := EMA(defined, signal)
		if err != nil {
			return MACDResult{}, err
		}
		for i, v := range definedSignal {
			vv := v
			signalLine[slow-1+i] = &vv
		}
	}

	histogram := make([]*float64, n)
	for i := 0; i < n; i++ {
		if macdLine[i] != nil && signalLine[i] != nil {
			h := *macdLine[i] - *signalLine[i]
			histogram[i] = &h
		}
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}, nil
}

// DefaultMACD runs MACD with the standard 12/26/9 parameters.
func DefaultMACD(prices []float64) (MACDResult, error) {
	return MACD(prices, 12, 26, 9)
}

// LatestHistogram returns the most recent defined histogram value and
// whether one exists.
func (r MACDResult) LatestHistogram() (float64, bool) {
	for i := len(r.Histogram) - 1; i >= 0; i-- {
		if r.Histogram[i] != nil {
			return *r.Histogram[i], true
		}
	}
	return 0, false
}
