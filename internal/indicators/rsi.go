package indicators

// RSIResult is the outcome of a Wilder-smoothed RSI calculation. IsValid is
// false when period is not positive or fewer than period+1 prices were
// supplied, matching the XxxResult shape grounded on the teacher's
// technical.go.
type RSIResult struct {
	Value   float64
	Period  int
	IsValid bool
}

// RSI computes Wilder-smoothed Relative Strength Index over period
// (default 14) per spec.md §4.1 and returns the value at the last price
// only; it needs at least period+1 prices. Seed averages are arithmetic means of the first `period` gains/losses,
// thereafter avg = (avg*(period-1)+current)/period. When avg_loss=0, RSI is
// 100 if any gain occurred, else 50.
func RSI(prices []float64, period int) RSIResult {
	if period <= 0 || len(prices) < period+1 {
		return RSIResult{Period: period, IsValid: false}
	}

	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
	}

	if avgLoss == 0 {
		if avgGain > 0 {
			return RSIResult{Value: 100, Period: period, IsValid: true}
		}
		return RSIResult{Value: 50, Period: period, IsValid: true}
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	return RSIResult{Value: rsi, Period: period, IsValid: true}
}

// DefaultRSI runs RSI with the standard 14-period window.
func DefaultRSI(prices []float64) RSIResult {
	return RSI(prices, 14)
}

// IsOverbought reports whether the RSI reading is in overbought territory.
func (r RSIResult) IsOverbought() bool { return r.IsValid && r.Value >= 70 }

// IsOversold reports whether the RSI reading is in oversold territory.
func (r RSIResult) IsOversold() bool { return r.IsValid && r.Value <= 30 }

// IsBullish reports whether the RSI reading favors upside (above midline).
func (r RSIResult) IsBullish() bool { return r.IsValid && r.Value > 50 }

// IsBearish reports whether the RSI reading favors downside (below midline).
func (r RSIResult) IsBearish() bool { return r.IsValid && r.Value < 50 }
