// Package indicators implements the pure-function technical-indicator
// primitives of spec.md §4.1, grounded on the Wilder-smoothing idiom and
// XxxResult struct shape of internal/domain/indicators/technical.go in the
// teacher repo, but reimplemented to match the spec's exact seeding and
// alpha rules where the two differ.
package indicators

import (
	"fmt"

	"github.com/sawpanic/marketanalysis/internal/apperr"
)

// EMA computes the exponential moving average of prices over period.
//
// For indices [0, period-2] the value is the expanding SMA over [0..i]. At
// index period-1 the value is the SMA of the first `period` prices. From
// there on, EMA_i = alpha*price_i + (1-alpha)*EMA_{i-1} with
// alpha = 2/(period+1).
func EMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, apperr.InvalidArgument(fmt.Sprintf("ema: period must be positive, got %d", period))
	}
	if len(prices) < period {
		return nil, apperr.InvalidArgument(fmt.Sprintf("ema: need at least %d prices, got %d", period, len(prices)))
	}

	out := make([]float64, len(prices))
	runningSum := 0.0
	for i := 0; i < period-1; i++ {
		runningSum += prices[i]
		out[i] = runningSum / float64(i+1)
	}

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += prices[i]
	}
	out[period-1] = sma / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}
