package workflow

import (
	"context"
	"math"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// TimeframePair is a (higher, lower) timeframe pair scanned together.
type TimeframePair struct {
	Higher ohlc.Timeframe
	Lower  ohlc.Timeframe
}

// TradeOpportunity is one admissible candidate from ScanOpportunities.
type TradeOpportunity struct {
	Symbol               string
	Higher               ohlc.Timeframe
	Lower                ohlc.Timeframe
	Direction            Direction
	Category             TradeCategory
	IsPullback           bool
	Confidence           float64
	IsConfirmed          bool
	AwaitingConfirmation string
}

// OpportunityScanResult is the output of ScanOpportunities.
type OpportunityScanResult struct {
	Opportunities []TradeOpportunity
}

// ScanOpportunities implements Workflow.scan_opportunities (spec.md
// §4.6/§6). Per spec.md §5, each (symbol, pair) task is independent and
// may be fanned out in parallel by the caller; the result is
// order-independent since each opportunity carries its own identifiers.
func (w *Workflow) ScanOpportunities(ctx context.Context, symbols []string, pairs []TimeframePair, includePotential bool) (OpportunityScanResult, error) {
	var result OpportunityScanResult

	for _, symbol := range symbols {
		for _, pair := range pairs {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			_, _, _, higher, err := w.fetchAndAssess(ctx, symbol, pair.Higher)
			if err != nil {
				continue
			}
			_, _, _, lower, err := w.fetchAndAssess(ctx, symbol, pair.Lower)
			if err != nil {
				continue
			}

			alignment := AssessAlignment(higher.Trend, lower.Trend)
			if !alignment.ShouldTrade || higher.Confidence < 60 {
				continue
			}

			confidence := math.Floor((higher.Confidence + lower.Confidence) / 2)
			if confidence > 100 {
				confidence = 100
			}

			opp := TradeOpportunity{
				Symbol:      symbol,
				Higher:      pair.Higher,
				Lower:       pair.Lower,
				Direction:   alignment.Direction,
				Category:    CategorizeTrade(alignment.Direction, higher.Trend, 0),
				IsPullback:  alignment.IsPullback,
				Confidence:  confidence,
				IsConfirmed: true,
			}

			if !alignment.IsPullback {
				// with-trend setup without a confirmed signal bar: include
				// only when the caller opted into potential setups.
				if !includePotential {
					continue
				}
				opp.IsConfirmed = false
				opp.AwaitingConfirmation = "Awaiting signal bar at Fib support/resistance"
			}

			result.Opportunities = append(result.Opportunities, opp)
		}
	}

	return result, nil
}
