package backtest

import "math"

// CategoryMetrics is the performance breakdown for one trade category.
type CategoryMetrics struct {
	TradeCount int
	WinCount   int
	WinRate    float64
	AverageR   float64
}

// Metrics implements spec.md §4.7's MetricsCalculator output.
type Metrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	BreakevenTrades int
	WinRate        float64

	GrossProfit   float64
	GrossLoss     float64
	ProfitFactor  float64
	AverageR      float64
	LargestWinner float64
	LargestLoser  float64

	MaxDrawdown         float64
	MaxDrawdownDuration int

	Sharpe  float64
	Sortino float64
	Calmar  float64

	ByCategory map[string]CategoryMetrics
}

const noLossProfitFactor = 999.99

// annualizationFactor assumes one equity sample per trading day, with 252
// trading days per year.
const annualizationFactor = 252.0

// ComputeMetrics implements MetricsCalculator.compute (spec.md §4.7).
func ComputeMetrics(trades []ClosedTrade, equity []EquityPoint) Metrics {
	m := Metrics{ByCategory: map[string]CategoryMetrics{}}
	if len(trades) == 0 {
		return m
	}

	byCategory := map[string][]ClosedTrade{}
	var rSum float64
	for _, t := range trades {
		pnl := t.PnL()
		m.TotalTrades++
		switch {
		case pnl > 0:
			m.WinningTrades++
			m.GrossProfit += pnl
			if pnl > m.LargestWinner {
				m.LargestWinner = pnl
			}
		case pnl < 0:
			m.LosingTrades++
			m.GrossLoss += -pnl
			if pnl < m.LargestLoser {
				m.LargestLoser = pnl
			}
		default:
			m.BreakevenTrades++
		}
		rSum += t.RMultiple()
		byCategory[string(t.Category)] = append(byCategory[string(t.Category)], t)
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	m.AverageR = rSum / float64(m.TotalTrades)

	if m.GrossLoss == 0 {
		m.ProfitFactor = noLossProfitFactor
	} else {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	}

	for cat, ts := range byCategory {
		wins := 0
		var catR float64
		for _, t := range ts {
			if t.PnL() > 0 {
				wins++
			}
			catR += t.RMultiple()
		}
		m.ByCategory[cat] = CategoryMetrics{
			TradeCount: len(ts),
			WinCount:   wins,
			WinRate:    float64(wins) / float64(len(ts)),
			AverageR:   catR / float64(len(ts)),
		}
	}

	m.MaxDrawdown, m.MaxDrawdownDuration = maxDrawdown(equity)
	m.Sharpe = sharpeRatio(equity)
	m.Sortino = sortinoRatio(equity)
	m.Calmar = calmarRatio(equity, m.MaxDrawdown)

	return m
}

// maxDrawdown walks the equity curve tracking the running peak; duration is
// the longest run of consecutive points below that peak.
func maxDrawdown(equity []EquityPoint) (float64, int) {
	if len(equity) == 0 {
		return 0, 0
	}
	peak := equity[0].Equity
	maxDD := 0.0
	curDuration, maxDuration := 0, 0
	for _, pt := range equity {
		if pt.Equity >= peak {
			peak = pt.Equity
			curDuration = 0
			continue
		}
		if peak == 0 {
			continue
		}
		dd := (peak - pt.Equity) / peak
		if dd > maxDD {
			maxDD = dd
		}
		curDuration++
		if curDuration > maxDuration {
			maxDuration = curDuration
		}
	}
	return maxDD, maxDuration
}

func equityReturns(equity []EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-prev)/prev)
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// sharpeRatio annualizes the mean/stdev of per-sample returns, risk-free
// rate of zero (spec.md §4.7).
func sharpeRatio(equity []EquityPoint) float64 {
	returns := equityReturns(equity)
	if len(returns) == 0 {
		return 0
	}
	avg := mean(returns)
	sd := stdDev(returns, avg)
	if sd == 0 {
		return 0
	}
	return avg / sd * math.Sqrt(annualizationFactor)
}

// sortinoRatio is the Sharpe variant using only downside deviation.
func sortinoRatio(equity []EquityPoint) float64 {
	returns := equityReturns(equity)
	if len(returns) == 0 {
		return 0
	}
	avg := mean(returns)
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		if avg <= 0 {
			return 0
		}
		return noLossProfitFactor
	}
	downsideDev := stdDev(downside, 0)
	if downsideDev == 0 {
		return 0
	}
	return avg / downsideDev * math.Sqrt(annualizationFactor)
}

// calmarRatio is annualized total return divided by max drawdown, per
// spec.md §4.7: annualize as (1+total_return)^(ann_factor/num_bars) - 1.
func calmarRatio(equity []EquityPoint, maxDD float64) float64 {
	numBars := len(equity)
	if maxDD == 0 || numBars == 0 {
		return 0
	}
	first := equity[0].Equity
	last := equity[numBars-1].Equity
	if first == 0 {
		return 0
	}
	totalReturn := (last - first) / first
	annualizedReturn := math.Pow(1+totalReturn, annualizationFactor/float64(numBars)) - 1
	return annualizedReturn / maxDD
}
